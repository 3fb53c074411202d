package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		jobsSubmitted,
		jobsTerminal,
		phaseTransitions,
		jobDurationSec,
		fanoutTasks,
	)
}

var (
	jobsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "research_jobs_submitted_total",
			Help: "Research jobs accepted via submit.",
		},
	)

	jobsTerminal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_jobs_terminal_total",
			Help: "Research jobs by terminal phase (done/rejected/error).",
		},
		[]string{"phase"},
	)

	phaseTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_phase_transitions_total",
			Help: "Pipeline phase transitions.",
		},
		[]string{"phase"},
	)

	jobDurationSec = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_job_duration_seconds",
			Help:    "End-to-end job duration by terminal phase.",
			Buckets: []float64{1, 5, 10, 20, 40, 80, 160, 320},
		},
		[]string{"phase"},
	)

	fanoutTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_fanout_tasks_total",
			Help: "Fan-out search tasks by outcome (ok/failed).",
		},
		[]string{"outcome"},
	)
)

func IncJobSubmitted() { jobsSubmitted.Inc() }

func IncJobTerminal(phase string) { jobsTerminal.WithLabelValues(norm(phase)).Inc() }

func IncPhase(phase string) { phaseTransitions.WithLabelValues(norm(phase)).Inc() }

func ObserveJobDuration(phase string, seconds float64) {
	jobDurationSec.WithLabelValues(norm(phase)).Observe(seconds)
}

func IncFanoutTask(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	fanoutTasks.WithLabelValues(outcome).Inc()
}

func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
