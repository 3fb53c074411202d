package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/domain/ports/agent"
)

// Compile-time check
var _ agent.Classifier = (*LLMClassifier)(nil)

// LLMClassifier gates queries with a single schema-constrained model call.
// No keyword heuristics: the keyword lists of earlier iterations aged badly.
type LLMClassifier struct {
	ai    adapter.AIServiceAdapter
	model string
}

func NewLLMClassifier(ai adapter.AIServiceAdapter, model string) *LLMClassifier {
	return &LLMClassifier{ai: ai, model: model}
}

var classifierSchema = adapter.JSONSchema{
	Name: "InputGuard",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type": "string",
				"enum": []string{model.CategoryDIY, model.CategoryKIControl, model.CategoryReject},
			},
			"reasons": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 1,
				"maxItems": 3,
			},
		},
		"required":             []string{"category", "reasons"},
		"additionalProperties": false,
	},
}

const classifierSystemPrompt = "Klassifiziere die Nutzeranfrage eindeutig: DIY, KI_CONTROL (Meta-Themen wie KI-Steuerung/Evaluierung, Guardrails, Orchestrierung), REJECT (alles andere). " +
	"DIY umfasst klassische Heimwerker-Arbeiten in Haus, Wohnung oder Garten (z. B. Laminat verlegen, Waschbecken tauschen, Regale montieren, Streichen, Reparaturen). " +
	"Nur REJECT, wenn es um fachfremde Themen wie Medizin, Finanzen, kontroverse Politik, illegale Inhalte oder riskante Arbeiten geht, die ohne Fachkraft nicht erlaubt sind. " +
	"Antworte nur als JSON mit den Feldern 'category' und 'reasons' (Liste von Begruendungen)."

func (c *LLMClassifier) Classify(ctx context.Context, query string) (model.Decision, error) {
	messages := []adapter.Message{
		{Role: "system", Content: classifierSystemPrompt},
		{Role: "user", Content: query},
	}

	raw, err := completeJSON(ctx, c.ai, "classifier", c.model, messages, classifierSchema)
	if err != nil {
		return model.Decision{}, domain.NewExternalServiceError("classifier", err)
	}

	var parsed struct {
		Category string   `json:"category"`
		Reasons  []string `json:"reasons"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return model.Decision{}, domain.NewExternalServiceError("classifier", fmt.Errorf("malformed response: %w", err))
	}
	switch parsed.Category {
	case model.CategoryDIY, model.CategoryKIControl, model.CategoryReject:
	default:
		return model.Decision{}, domain.NewExternalServiceError("classifier", fmt.Errorf("unknown category %q", parsed.Category))
	}
	if len(parsed.Reasons) == 0 {
		return model.Decision{}, domain.NewExternalServiceError("classifier", fmt.Errorf("no reasons given"))
	}

	return model.Decision{
		Allowed:  parsed.Category != model.CategoryReject,
		Category: parsed.Category,
		Reasons:  parsed.Reasons,
	}, nil
}
