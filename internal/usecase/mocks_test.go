// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
)

// ---- Fakes ----

// syncSpawner runs job functions inline so tests observe the terminal
// status as soon as Submit returns.
type syncSpawner struct{}

func (syncSpawner) Go(fn func()) { fn() }

// memStatusRepo is a small in-memory status store that also records every
// phase transition in order.
type memStatusRepo struct {
	mu      sync.Mutex
	entries map[string]model.JobStatus
	history []model.Phase
}

func newMemStatusRepo() *memStatusRepo {
	return &memStatusRepo{entries: make(map[string]model.JobStatus)}
}

func (m *memStatusRepo) Set(_ context.Context, jobID string, phase model.Phase, detail string, payload *model.ReportPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[jobID]; ok && cur.Phase.Terminal() {
		return
	}
	m.entries[jobID] = model.JobStatus{JobID: jobID, Phase: phase, Detail: detail, Payload: payload}
	m.history = append(m.history, phase)
}

func (m *memStatusRepo) Get(_ context.Context, jobID string) (model.JobStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.entries[jobID]
	if !ok {
		return model.JobStatus{}, domain.ErrNotFound
	}
	return st, nil
}

func (m *memStatusRepo) phases() []model.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Phase, len(m.history))
	copy(out, m.history)
	return out
}

// fakeClassifier, fakePlanner, fakeSearcher, fakeWriter, fakeAuditor and
// fakeMailer stub one pipeline collaborator each. The zero value of every
// fake succeeds with plausible output.

type fakeClassifier struct {
	decision model.Decision
	err      error
	calls    int
}

func (f *fakeClassifier) Classify(_ context.Context, _ string) (model.Decision, error) {
	f.calls++
	if f.err != nil {
		return model.Decision{}, f.err
	}
	if f.decision.Category == "" {
		return model.Decision{Allowed: true, Category: model.CategoryDIY}, nil
	}
	return f.decision, nil
}

type fakePlanner struct {
	tasks []model.SearchTask
	err   error
	calls int
}

func (f *fakePlanner) Plan(_ context.Context, query, _ string) ([]model.SearchTask, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.tasks != nil {
		return f.tasks, nil
	}
	return []model.SearchTask{
		{Index: 0, Reason: "materials", Query: query + " Material"},
		{Index: 1, Reason: "steps", Query: query + " Anleitung"},
		{Index: 2, Reason: "safety", Query: query + " Sicherheit"},
	}, nil
}

type fakeSearcher struct {
	mu    sync.Mutex
	errBy map[int]error // per-task failures keyed by Index
	delay time.Duration
	calls int
}

func (f *fakeSearcher) Search(ctx context.Context, task model.SearchTask) (model.SearchResult, error) {
	f.mu.Lock()
	f.calls++
	err := f.errBy[task.Index]
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.SearchResult{}, ctx.Err()
		}
	}
	if err != nil {
		return model.SearchResult{}, err
	}
	return model.SearchResult{Index: task.Index, Query: task.Query, Summary: "summary for " + task.Query}, nil
}

type fakeWriter struct {
	report *model.Report
	err    error
	calls  int
	gotLen int // number of search results handed in
}

func (f *fakeWriter) Write(_ context.Context, _, _ string, results []model.SearchResult) (*model.Report, error) {
	f.calls++
	f.gotLen = len(results)
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &model.Report{
		ShortSummary:      "Kurze Zusammenfassung",
		MarkdownReport:    "# Bericht\n\nInhalt.",
		FollowupQuestions: []string{"Welcher Unterboden?"},
	}, nil
}

type fakeAuditor struct {
	decision model.Decision
	err      error
	calls    int
}

func (f *fakeAuditor) Audit(_ context.Context, _ string, _ *model.Report) (model.Decision, error) {
	f.calls++
	if f.err != nil {
		return model.Decision{}, f.err
	}
	if f.decision.Category == "" && f.decision.Reasons == nil {
		return model.Decision{Allowed: true}, nil
	}
	return f.decision, nil
}

type fakeMailer struct {
	err   error
	delay time.Duration
	calls int
	to    string
}

func (f *fakeMailer) Deliver(ctx context.Context, _ *model.Report, to string) (*model.DeliveryReceipt, error) {
	f.calls++
	f.to = to
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.DeliveryReceipt{MessageID: "msg-1", StatusCode: 202, SentAt: time.Now()}, nil
}
