package repository

import (
	"context"

	"diy-research-agent/internal/domain/model"
)

// StatusRepository maps a job ID to its latest progress snapshot. One
// writer per job (the pipeline goroutine that owns it), any number of
// concurrent readers.
type StatusRepository interface {
	// Set replaces the stored snapshot atomically. Writes against a record
	// that already reached a terminal phase are ignored: terminal records
	// are frozen.
	Set(ctx context.Context, jobID string, phase model.Phase, detail string, payload *model.ReportPayload)

	// Get returns the latest snapshot, or domain.ErrNotFound for an unknown
	// job ID.
	Get(ctx context.Context, jobID string) (model.JobStatus, error)
}
