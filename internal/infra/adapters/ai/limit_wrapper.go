package ai

import (
	"context"

	"diy-research-agent/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.AIServiceAdapter = (*limitedAI)(nil)

// limitedAI caps the number of concurrent completion calls process-wide.
// The per-job fan-out has its own bound; this gate protects the provider
// quota when many jobs run at once.
type limitedAI struct {
	inner adapter.AIServiceAdapter
	sem   chan struct{}
}

func NewLimitedAI(inner adapter.AIServiceAdapter, maxConcurrent int) adapter.AIServiceAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, model, messages)
}

func (l *limitedAI) CompleteJSON(ctx context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer func() { <-l.sem }()
	return l.inner.CompleteJSON(ctx, model, messages, schema)
}

func (l *limitedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return l.inner.CountTokens(ctx, model, messages)
}

func (l *limitedAI) ListModels(ctx context.Context) ([]string, error) {
	return l.inner.ListModels(ctx)
}
