package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/domain/ports/agent"
)

// Compile-time check
var _ agent.Writer = (*LLMWriter)(nil)

const (
	// maxReportChars caps the Markdown body of a parsed report.
	maxReportChars = 40_000
	truncationMark = "[Gekuerzt]"
)

// LLMWriter composes the structured report from the surviving search
// summaries. Input summaries are budgeted by token count so an unusually
// verbose search stage cannot blow the writer's context window.
type LLMWriter struct {
	ai             adapter.AIServiceAdapter
	model          string
	maxInputTokens int
}

func NewLLMWriter(ai adapter.AIServiceAdapter, model string, maxInputTokens int) *LLMWriter {
	if maxInputTokens <= 0 {
		maxInputTokens = 6_000
	}
	return &LLMWriter{ai: ai, model: model, maxInputTokens: maxInputTokens}
}

var writerSchema = adapter.JSONSchema{
	Name: "PremiumReport",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"short_summary":   map[string]any{"type": "string"},
			"markdown_report": map[string]any{"type": "string"},
			"followup_questions": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 6,
			},
		},
		"required":             []string{"short_summary", "markdown_report", "followup_questions"},
		"additionalProperties": false,
	},
}

func (w *LLMWriter) Write(ctx context.Context, query, category string, results []model.SearchResult) (*model.Report, error) {
	summaries := make([]string, 0, len(results))
	for _, r := range results {
		if r.Succeeded() {
			summaries = append(summaries, r.Summary)
		}
	}
	if len(summaries) == 0 {
		return nil, domain.NewExternalServiceError("writer", domain.ErrNoSearchResults)
	}

	summaries, err := w.budgetSummaries(ctx, summaries)
	if err != nil {
		return nil, domain.NewExternalServiceError("writer", err)
	}

	input, err := json.Marshal(map[string]any{
		"query":          query,
		"search_results": summaries,
	})
	if err != nil {
		return nil, domain.NewExternalServiceError("writer", err)
	}

	messages := []adapter.Message{
		{Role: "system", Content: w.systemPrompt(category)},
		{Role: "user", Content: string(input)},
	}
	raw, err := completeJSON(ctx, w.ai, "writer", w.model, messages, writerSchema)
	if err != nil {
		return nil, domain.NewExternalServiceError("writer", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, domain.NewExternalServiceError("writer", fmt.Errorf("malformed report: %w", err))
	}
	if strings.TrimSpace(report.MarkdownReport) == "" {
		return nil, domain.NewExternalServiceError("writer", domain.ErrEmptyReport)
	}
	if len(report.MarkdownReport) > maxReportChars {
		report.MarkdownReport = truncate(report.MarkdownReport, maxReportChars-len(truncationMark)) + truncationMark
	}
	return &report, nil
}

func (w *LLMWriter) systemPrompt(category string) string {
	base := "Du bist ein Fach-Autor fuer Heimwerker-Reports. Erzeuge aus Query und Suchergebnissen einen Markdown-Report " +
		"mit Kurzfassung und 4-6 Rueckfragen als JSON (Felder: short_summary, markdown_report, followup_questions). " +
		"Gliedere mit ##-Ueberschriften: Uebersicht, Material & Werkzeuge, Schritt-fuer-Schritt, Sicherheit, Zeit & Kosten."
	if category == model.CategoryKIControl {
		base += " Der Report behandelt ein Meta-Thema zu KI-Steuerung; bewerte sachlich statt anzuleiten."
	}
	return base
}

// budgetSummaries drops whole summaries from the tail until the combined
// prompt fits the token budget. At least the first summary always survives,
// truncated if necessary.
func (w *LLMWriter) budgetSummaries(ctx context.Context, summaries []string) ([]string, error) {
	for len(summaries) > 1 {
		n, err := w.countTokens(ctx, summaries)
		if err != nil {
			return nil, err
		}
		if n <= w.maxInputTokens {
			return summaries, nil
		}
		summaries = summaries[:len(summaries)-1]
	}
	n, err := w.countTokens(ctx, summaries)
	if err != nil {
		return nil, err
	}
	if n > w.maxInputTokens {
		// Rough char budget: tokens average ~4 chars.
		limit := w.maxInputTokens * 4
		if len(summaries[0]) > limit {
			summaries[0] = truncate(summaries[0], limit) + truncationMark
		}
	}
	return summaries, nil
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func (w *LLMWriter) countTokens(ctx context.Context, summaries []string) (int, error) {
	msgs := make([]adapter.Message, 0, len(summaries))
	for _, s := range summaries {
		msgs = append(msgs, adapter.Message{Role: "user", Content: s})
	}
	return w.ai.CountTokens(ctx, w.model, msgs)
}
