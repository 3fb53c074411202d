// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"diy-research-agent/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*MultiAIAdapter)(nil)

// MultiAIAdapter routes calls to a provider adapter by model name prefix,
// with a default provider for everything unrecognized. Each provider
// adapter keeps its own default model.
type MultiAIAdapter struct {
	defaultProvider string // "openai" or "gemini"
	byProvider      map[string]adapter.AIServiceAdapter
}

func NewMultiAIAdapter(defaultProvider string, byProvider map[string]adapter.AIServiceAdapter) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		byProvider:      byProvider,
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"):
		return "openai"
	default:
		return m.defaultProvider
	}
}

func (m *MultiAIAdapter) pick(model string) adapter.AIServiceAdapter {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	// last resort: first available
	for _, a := range m.byProvider {
		if a != nil {
			return a
		}
	}
	return nil
}

func (m *MultiAIAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	a := m.pick(model)
	if a == nil {
		return "", errors.New("multi-ai: no provider configured")
	}
	return a.Complete(ctx, model, messages)
}

func (m *MultiAIAdapter) CompleteJSON(ctx context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	a := m.pick(model)
	if a == nil {
		return "", errors.New("multi-ai: no provider configured")
	}
	return a.CompleteJSON(ctx, model, messages, schema)
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	a := m.pick(model)
	if a == nil {
		return 0, errors.New("multi-ai: no provider configured")
	}
	return a.CountTokens(ctx, model, messages)
}

func (m *MultiAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, a := range m.byProvider {
		if a == nil {
			continue
		}
		list, _ := a.ListModels(ctx)
		for _, name := range list {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	return out, nil
}
