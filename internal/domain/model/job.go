package model

import "time"

// Phase is a job's current position in the research pipeline. Values are
// stored verbatim in the status store and returned to polling clients, so
// they must stay stable.
type Phase string

const (
	PhaseQueued      Phase = "queued"
	PhaseClassifying Phase = "classifying"
	PhasePlanning    Phase = "planning"
	PhaseSearching   Phase = "searching"
	PhaseWriting     Phase = "writing"
	PhaseAuditing    Phase = "auditing"
	PhaseDelivering  Phase = "delivering"
	PhaseDone        Phase = "done"
	PhaseRejected    Phase = "rejected"
	PhaseError       Phase = "error"
)

// Terminal reports whether no further transition happens after p.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseDone, PhaseRejected, PhaseError:
		return true
	}
	return false
}

// rank orders the non-terminal pipeline phases. Terminal phases share the
// highest rank because exactly one of them ends a job.
func (p Phase) rank() int {
	switch p {
	case PhaseQueued:
		return 0
	case PhaseClassifying:
		return 1
	case PhasePlanning:
		return 2
	case PhaseSearching:
		return 3
	case PhaseWriting:
		return 4
	case PhaseAuditing:
		return 5
	case PhaseDelivering:
		return 6
	case PhaseDone, PhaseRejected, PhaseError:
		return 7
	}
	return -1
}

// Before reports whether p precedes q in the pipeline order.
func (p Phase) Before(q Phase) bool { return p.rank() < q.rank() }

// Job is one submitted research request. Fields are immutable after
// submission; the running pipeline is the only writer of its status.
type Job struct {
	ID          string
	Query       string
	Email       string
	SubmittedAt time.Time
}

// JobStatus is the progress snapshot a polling client sees. Once Phase is
// terminal the record never changes again.
type JobStatus struct {
	JobID   string         `json:"job_id"`
	Phase   Phase          `json:"phase"`
	Detail  string         `json:"detail,omitempty"`
	Payload *ReportPayload `json:"payload,omitempty"`
}
