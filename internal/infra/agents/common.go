// Package agents implements the pipeline collaborators on top of the AI
// service port. Every agent is a strict parsing boundary: whatever the
// model returns is validated here, and anything malformed becomes a
// domain.ExternalServiceError instead of leaking half-parsed structures
// into the pipeline.
package agents

import (
	"context"
	"strings"
	"time"

	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/infra/metrics"
)

// completeJSON runs a schema-constrained completion and records latency.
func completeJSON(ctx context.Context, ai adapter.AIServiceAdapter, agentName, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	start := time.Now()
	raw, err := ai.CompleteJSON(ctx, model, messages, schema)
	metrics.ObserveAICall(agentName, model, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	return stripCodeFence(raw), nil
}

// complete runs a free-text completion and records latency.
func complete(ctx context.Context, ai adapter.AIServiceAdapter, agentName, model string, messages []adapter.Message) (string, error) {
	start := time.Now()
	out, err := ai.Complete(ctx, model, messages)
	metrics.ObserveAICall(agentName, model, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// stripCodeFence removes a Markdown code block wrapper some models put
// around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
