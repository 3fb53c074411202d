// File: internal/usecase/research_uc.go
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/agent"
	"diy-research-agent/internal/domain/ports/repository"
	"diy-research-agent/internal/infra/logging"
	"diy-research-agent/internal/infra/metrics"
)

// Compile-time check
var _ ResearchUseCase = (*researchUC)(nil)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ResearchUseCase drives research jobs end to end. Submit is
// fire-and-forget: the caller gets the job ID immediately and observes
// everything else through Poll.
type ResearchUseCase interface {
	Submit(ctx context.Context, query, email string) (string, error)
	Poll(ctx context.Context, jobID string) (model.JobStatus, error)
}

// Spawner runs a job function on a tracked goroutine so the process can
// drain in-flight jobs on shutdown.
type Spawner interface {
	Go(fn func())
}

// Agents bundles the pipeline collaborators.
type Agents struct {
	Classifier agent.Classifier
	Planner    agent.Planner
	Searcher   agent.Searcher
	Writer     agent.Writer
	Auditor    agent.Auditor
	Mailer     agent.Mailer
}

type researchUC struct {
	statuses repository.StatusRepository
	agents   Agents
	spawner  Spawner

	fanoutLimit  int
	stageTimeout time.Duration
	log          *zerolog.Logger
}

func NewResearchUseCase(
	statuses repository.StatusRepository,
	agents Agents,
	spawner Spawner,
	fanoutLimit int,
	stageTimeout time.Duration,
	log *zerolog.Logger,
) *researchUC {
	return &researchUC{
		statuses:     statuses,
		agents:       agents,
		spawner:      spawner,
		fanoutLimit:  fanoutLimit,
		stageTimeout: stageTimeout,
		log:          log,
	}
}

func (u *researchUC) Submit(ctx context.Context, query, email string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", domain.ErrEmptyQuery
	}
	if !emailRx.MatchString(email) {
		return "", domain.ErrInvalidEmail
	}

	job := model.Job{
		ID:          uuid.NewString(),
		Query:       query,
		Email:       email,
		SubmittedAt: time.Now(),
	}
	u.statuses.Set(ctx, job.ID, model.PhaseQueued, "", nil)
	metrics.IncJobSubmitted()

	// The job runs detached from the submitter's context: the caller
	// disconnecting must not cancel the pipeline.
	u.spawner.Go(func() {
		u.run(context.Background(), job)
	})
	return job.ID, nil
}

func (u *researchUC) Poll(ctx context.Context, jobID string) (model.JobStatus, error) {
	return u.statuses.Get(ctx, jobID)
}

// run drives one job through the fixed stage sequence. It is the only
// writer of this job's status; every transition lands in the status store
// before the next collaborator call starts. Each stage gets exactly one
// attempt: retrying a paid external call silently would be worse than
// surfacing the failure to a caller who can resubmit.
func (u *researchUC) run(ctx context.Context, job model.Job) {
	ctx = logging.WithJobID(ctx, job.ID)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "ResearchUC.run")()
	start := time.Now()

	terminal := func(phase model.Phase, detail string, payload *model.ReportPayload) {
		u.statuses.Set(ctx, job.ID, phase, detail, payload)
		metrics.IncPhase(string(phase))
		metrics.IncJobTerminal(string(phase))
		metrics.ObserveJobDuration(string(phase), time.Since(start).Seconds())
	}
	advance := func(phase model.Phase) {
		ctx = logging.WithPhase(ctx, string(phase))
		log = logging.With(ctx, u.log)
		u.statuses.Set(ctx, job.ID, phase, "", nil)
		metrics.IncPhase(string(phase))
	}

	// Stage 1: classify.
	advance(model.PhaseClassifying)
	decision, err := u.callClassifier(ctx, job.Query)
	if err != nil {
		log.Error().Err(err).Msg("classifier failed")
		terminal(model.PhaseError, externalFailureDetail(err), nil)
		return
	}
	if !decision.Allowed {
		log.Info().Strs("reasons", decision.Reasons).Msg("query rejected by classifier")
		terminal(model.PhaseRejected, "query out of scope: "+strings.Join(decision.Reasons, "; "), nil)
		return
	}
	category := decision.Category

	// Stage 2: plan.
	advance(model.PhasePlanning)
	tasks, err := u.callPlanner(ctx, job.Query, category)
	if err != nil {
		log.Error().Err(err).Msg("planner failed")
		terminal(model.PhaseError, externalFailureDetail(err), nil)
		return
	}

	// Stage 3: concurrent searches. One slot per planned task survives the
	// fan-out; individual failures degrade the report instead of ending the
	// job, as long as at least one task produced a summary.
	advance(model.PhaseSearching)
	results, err := u.runSearches(ctx, tasks)
	if err != nil {
		log.Error().Err(err).Int("tasks", len(tasks)).Msg("all searches failed")
		terminal(model.PhaseError, externalFailureDetail(err), nil)
		return
	}

	// Stage 4: write.
	advance(model.PhaseWriting)
	report, err := u.callWriter(ctx, job.Query, category, results)
	if err != nil {
		log.Error().Err(err).Msg("writer failed")
		terminal(model.PhaseError, externalFailureDetail(err), nil)
		return
	}

	// Stage 5: audit.
	advance(model.PhaseAuditing)
	audit, err := u.callAuditor(ctx, job.Query, report)
	if err != nil {
		log.Error().Err(err).Msg("auditor failed")
		terminal(model.PhaseError, externalFailureDetail(err), nil)
		return
	}
	if !audit.Allowed {
		log.Info().Strs("issues", audit.Reasons).Msg("report rejected by auditor")
		terminal(model.PhaseRejected, "policy: "+strings.Join(audit.Reasons, "; "), nil)
		return
	}

	// Stage 6: deliver. Provider error details are surfaced verbatim so an
	// operator can diagnose transport failures from the status record.
	advance(model.PhaseDelivering)
	receipt, err := u.callMailer(ctx, report, job.Email)
	if err != nil {
		log.Error().Err(err).Str("to", job.Email).Msg("delivery failed")
		terminal(model.PhaseError, err.Error(), nil)
		return
	}

	log.Info().Str("message_id", receipt.MessageID).Msg("job done")
	terminal(model.PhaseDone, "", buildPayload(report, tasks, results))
}

func (u *researchUC) callClassifier(ctx context.Context, query string) (model.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
	defer cancel()
	return u.agents.Classifier.Classify(ctx, query)
}

func (u *researchUC) callPlanner(ctx context.Context, query, category string) ([]model.SearchTask, error) {
	ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
	defer cancel()
	return u.agents.Planner.Plan(ctx, query, category)
}

// runSearches fans the tasks out through the bounded executor and keeps
// every slot, failed or not. It fails only when no task succeeded.
func (u *researchUC) runSearches(ctx context.Context, tasks []model.SearchTask) ([]model.SearchResult, error) {
	outcomes, err := FanOut(ctx, tasks, u.fanoutLimit, func(ctx context.Context, task model.SearchTask) (model.SearchResult, error) {
		ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
		defer cancel()
		return u.agents.Searcher.Search(ctx, task)
	})
	if err != nil {
		return nil, domain.NewExternalServiceError("search", err)
	}

	results := make([]model.SearchResult, len(outcomes))
	succeeded := 0
	for i, out := range outcomes {
		res := out.Value
		res.Index = i
		if i < len(tasks) {
			res.Query = tasks[i].Query
		}
		if out.Err != nil {
			res.Err = out.Err
			res.Summary = ""
		}
		if res.Succeeded() {
			succeeded++
		} else {
			log := logging.With(ctx, u.log)
			log.Warn().Int("task", i).AnErr("cause", res.Err).Msg("search task failed, continuing without it")
		}
		metrics.IncFanoutTask(res.Succeeded())
		results[i] = res
	}
	if succeeded == 0 {
		return nil, domain.NewExternalServiceError("search", fmt.Errorf("all %d search tasks failed", len(tasks)))
	}
	return results, nil
}

func (u *researchUC) callWriter(ctx context.Context, query, category string, results []model.SearchResult) (*model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
	defer cancel()
	return u.agents.Writer.Write(ctx, query, category, results)
}

func (u *researchUC) callAuditor(ctx context.Context, query string, report *model.Report) (model.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
	defer cancel()
	return u.agents.Auditor.Audit(ctx, query, report)
}

func (u *researchUC) callMailer(ctx context.Context, report *model.Report, to string) (*model.DeliveryReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, u.stageTimeout)
	defer cancel()
	return u.agents.Mailer.Deliver(ctx, report, to)
}

// externalFailureDetail keeps operator-facing detail strings uniform for
// collaborator failures without leaking prompt content.
func externalFailureDetail(err error) string {
	return "external service failure: " + err.Error()
}

func buildPayload(report *model.Report, tasks []model.SearchTask, results []model.SearchResult) *model.ReportPayload {
	payload := &model.ReportPayload{
		ShortSummary:      report.ShortSummary,
		FollowupQuestions: report.FollowupQuestions,
	}
	for i, res := range results {
		if !res.Succeeded() {
			continue
		}
		reason := ""
		if i < len(tasks) {
			reason = tasks[i].Reason
		}
		payload.Searches = append(payload.Searches, model.SearchSummary{
			Reason:  reason,
			Query:   res.Query,
			Summary: res.Summary,
		})
	}
	return payload
}
