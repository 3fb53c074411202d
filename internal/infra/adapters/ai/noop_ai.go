package ai

import (
	"context"
	"time"

	"diy-research-agent/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIServiceAdapter for local/dev runs.
// It returns canned responses shaped like what the agents expect, so the
// whole pipeline can run end to end without provider keys.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	if err := a.pause(ctx); err != nil {
		return "", err
	}
	return "Dies ist eine Noop-Zusammenfassung: die wichtigsten Punkte in zwei kurzen Absätzen.\n\nWeitere Hinweise folgen im vollständigen Report.", nil
}

func (a *NoopAIAdapter) CompleteJSON(ctx context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	if err := a.pause(ctx); err != nil {
		return "", err
	}
	switch schema.Name {
	case "InputGuard":
		return `{"category":"DIY","reasons":["noop classifier accepts everything"]}`, nil
	case "WebSearchPlan":
		return `{"searches":[` +
			`{"reason":"Materialien & Werkzeuge","query":"noop materials"},` +
			`{"reason":"Schritt-für-Schritt Anleitung","query":"noop howto"},` +
			`{"reason":"Sicherheit & Fehler vermeiden","query":"noop safety"}]}`, nil
	case "PremiumReport":
		return `{"short_summary":"Noop-Report.","markdown_report":"# Noop-Projekt\n\n## Übersicht\n\nPlatzhalterinhalt.","followup_questions":["Welcher Untergrund?","Welches Budget?","Welche Werkzeuge sind vorhanden?","Wie viel Zeit ist eingeplant?"]}`, nil
	case "OutputGuard":
		return `{"allowed":true,"category":"DIY","issues":[]}`, nil
	}
	return "{}", nil
}

func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop-ai-model"}, nil
}

// pause simulates slight processing time while respecting ctx.
func (a *NoopAIAdapter) pause(ctx context.Context) error {
	select {
	case <-time.After(50 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
