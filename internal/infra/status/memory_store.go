// Package status provides the in-memory job status registry. It is
// process-scoped by design: it does not survive a restart and does not
// coordinate across instances. The registry is injected into its users so
// tests can run several side by side.
package status

import (
	"context"
	"sync"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.StatusRepository = (*MemoryStore)(nil)

// MemoryStore maps job ID to the latest JobStatus snapshot. Safe for one
// writer per job and any number of concurrent readers.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]model.JobStatus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]model.JobStatus)}
}

// Set replaces the snapshot for jobID atomically. A record that reached a
// terminal phase is frozen: later writes are dropped so polling after
// termination always returns the identical value.
func (s *MemoryStore) Set(_ context.Context, jobID string, phase model.Phase, detail string, payload *model.ReportPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[jobID]; ok && cur.Phase.Terminal() {
		return
	}
	s.entries[jobID] = model.JobStatus{
		JobID:   jobID,
		Phase:   phase,
		Detail:  detail,
		Payload: payload,
	}
}

// Get returns the latest snapshot or domain.ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, jobID string) (model.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.entries[jobID]
	if !ok {
		return model.JobStatus{}, domain.ErrNotFound
	}
	return st, nil
}

// Delete removes a job's record. Retention policy lives with the caller.
func (s *MemoryStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, jobID)
}

// Len reports the number of tracked jobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
