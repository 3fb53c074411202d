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
var _ agent.Auditor = (*LLMAuditor)(nil)

// LLMAuditor checks the finished report against content policy with one
// schema-constrained model call.
type LLMAuditor struct {
	ai    adapter.AIServiceAdapter
	model string
}

func NewLLMAuditor(ai adapter.AIServiceAdapter, model string) *LLMAuditor {
	return &LLMAuditor{ai: ai, model: model}
}

var auditorSchema = adapter.JSONSchema{
	Name: "OutputGuard",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"allowed": map[string]any{"type": "boolean"},
			"category": map[string]any{
				"type": "string",
				"enum": []string{model.CategoryDIY, model.CategoryKIControl, model.CategoryUnknown},
			},
			"issues": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"allowed", "category", "issues"},
		"additionalProperties": false,
	},
}

const auditorSystemPrompt = "Pruefe den Markdown-Report auf Richtlinien. Erlaubt: DIY-Inhalte oder Meta-Bewertungen zu KI-Steuerung. " +
	"Verboten: unsichere Anleitungen (Elektrik/Gas ohne Fachkraft und Warnhinweise), medizinische/finanzielle Beratung, personenbezogene Daten. " +
	"Antworte nur als JSON mit 'allowed', 'category' (DIY, KI_CONTROL, UNKNOWN) und 'issues'."

func (a *LLMAuditor) Audit(ctx context.Context, query string, report *model.Report) (model.Decision, error) {
	input, err := json.Marshal(map[string]string{
		"query":  query,
		"report": report.MarkdownReport,
	})
	if err != nil {
		return model.Decision{}, domain.NewExternalServiceError("auditor", err)
	}
	messages := []adapter.Message{
		{Role: "system", Content: auditorSystemPrompt},
		{Role: "user", Content: string(input)},
	}

	raw, err := completeJSON(ctx, a.ai, "auditor", a.model, messages, auditorSchema)
	if err != nil {
		return model.Decision{}, domain.NewExternalServiceError("auditor", err)
	}

	var parsed struct {
		Allowed  bool     `json:"allowed"`
		Category string   `json:"category"`
		Issues   []string `json:"issues"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return model.Decision{}, domain.NewExternalServiceError("auditor", fmt.Errorf("malformed response: %w", err))
	}
	if !parsed.Allowed && len(parsed.Issues) == 0 {
		return model.Decision{}, domain.NewExternalServiceError("auditor", fmt.Errorf("decline without issues"))
	}

	return model.Decision{
		Allowed:  parsed.Allowed,
		Category: parsed.Category,
		Reasons:  parsed.Issues,
	}, nil
}
