// Package agent declares the collaborator ports the research pipeline
// drives. Each is a single request/response call to an external service;
// implementations translate transport and parse failures into
// domain.ExternalServiceError so the pipeline never sees a half-parsed
// response.
package agent

import (
	"context"

	"diy-research-agent/internal/domain/model"
)

// Classifier gates the incoming query. A REJECT category comes back as
// Decision{Allowed: false} with at least one reason, not as an error.
type Classifier interface {
	Classify(ctx context.Context, query string) (model.Decision, error)
}

// Planner derives an ordered, non-empty list of search tasks.
type Planner interface {
	Plan(ctx context.Context, query, category string) ([]model.SearchTask, error)
}

// Searcher answers exactly one planned search task.
type Searcher interface {
	Search(ctx context.Context, task model.SearchTask) (model.SearchResult, error)
}

// Writer composes the report from the surviving search summaries.
type Writer interface {
	Write(ctx context.Context, query, category string, results []model.SearchResult) (*model.Report, error)
}

// Auditor gates the finished report. Like the classifier, a policy decline
// is a Decision, not an error.
type Auditor interface {
	Audit(ctx context.Context, query string, report *model.Report) (model.Decision, error)
}

// Mailer renders and delivers the report to the destination address.
type Mailer interface {
	Deliver(ctx context.Context, report *model.Report, to string) (*model.DeliveryReceipt, error)
}
