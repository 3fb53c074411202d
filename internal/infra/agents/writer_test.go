// File: internal/infra/agents/writer_test.go
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
)

const goodReport = `{"short_summary":"Kurz","markdown_report":"# Laminat\n\n## Uebersicht\nText.","followup_questions":["F1","F2","F3","F4"]}`

func okResults() []model.SearchResult {
	return []model.SearchResult{
		{Index: 0, Query: "a", Summary: "Summary A"},
		{Index: 1, Query: "b", Summary: "Summary B"},
	}
}

func TestWriteComposesReport(t *testing.T) {
	ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": goodReport}}
	w := NewLLMWriter(ai, "gpt-4o", 0)

	report, err := w.Write(context.Background(), "Laminat verlegen", model.CategoryDIY, okResults())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if report.ShortSummary != "Kurz" {
		t.Errorf("short summary = %q", report.ShortSummary)
	}
	if !strings.Contains(report.MarkdownReport, "# Laminat") {
		t.Errorf("markdown = %q", report.MarkdownReport)
	}
	if len(report.FollowupQuestions) != 4 {
		t.Errorf("followups = %d", len(report.FollowupQuestions))
	}
}

func TestWriteSkipsFailedResults(t *testing.T) {
	ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": goodReport}}
	w := NewLLMWriter(ai, "gpt-4o", 0)

	results := append(okResults(), model.SearchResult{Index: 2, Query: "c", Err: errors.New("timeout")})
	if _, err := w.Write(context.Background(), "q", model.CategoryDIY, results); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// The failed slot's (empty) summary must not reach the prompt.
	prompt := ai.lastMessages[len(ai.lastMessages)-1].Content
	if strings.Contains(prompt, `""`) && strings.Count(prompt, "Summary") > 2 {
		t.Errorf("prompt carries failed slots: %q", prompt)
	}
}

func TestWriteNoUsableResults(t *testing.T) {
	ai := &scriptedAI{}
	w := NewLLMWriter(ai, "gpt-4o", 0)

	results := []model.SearchResult{{Err: errors.New("x")}, {Err: errors.New("y")}}
	_, err := w.Write(context.Background(), "q", model.CategoryDIY, results)
	if !domain.IsExternalServiceError(err) {
		t.Fatalf("got %v, want ExternalServiceError", err)
	}
	if !errors.Is(err, domain.ErrNoSearchResults) {
		t.Errorf("underlying error = %v", err)
	}
	if ai.jsonCalls != 0 {
		t.Error("model called with nothing to write about")
	}
}

func TestWriteFailsClosedOnBadOutput(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"short_summary":`,
		"empty report":   `{"short_summary":"s","markdown_report":"   ","followup_questions":["a","b","c","d"]}`,
	}
	for name, raw := range cases {
		ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": raw}}
		w := NewLLMWriter(ai, "gpt-4o", 0)
		if _, err := w.Write(context.Background(), "q", model.CategoryDIY, okResults()); !domain.IsExternalServiceError(err) {
			t.Errorf("%s: got %v, want ExternalServiceError", name, err)
		}
	}
}

func TestWriteBudgetsOversizedInput(t *testing.T) {
	ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": goodReport}}
	// Budget of 100 tokens; each summary counts ~250 tokens via the
	// length-based fake counter.
	w := NewLLMWriter(ai, "gpt-4o", 100)

	big := strings.Repeat("viel Text ", 100)
	results := []model.SearchResult{
		{Index: 0, Summary: big},
		{Index: 1, Summary: big},
		{Index: 2, Summary: big},
	}
	if _, err := w.Write(context.Background(), "q", model.CategoryDIY, results); err != nil {
		t.Fatalf("Write: %v", err)
	}

	prompt := ai.lastMessages[len(ai.lastMessages)-1].Content
	// Only the first summary survives, truncated to the char budget.
	if got := strings.Count(prompt, "viel Text"); got >= 200 {
		t.Errorf("prompt kept %d repetitions, budgeting did not trim", got)
	}
	if !strings.Contains(prompt, "[Gekuerzt]") {
		t.Error("truncated summary misses truncation mark")
	}
}

func TestWriteTruncatesOversizedReport(t *testing.T) {
	// Multi-byte content around the cut point; the truncated body must
	// stay valid UTF-8 and end with the marker.
	body := strings.Repeat("Schritt fuer Schritt erklaert ä ", 2_000)
	raw, err := json.Marshal(map[string]any{
		"short_summary":      "Kurz",
		"markdown_report":    "# Gross\n\n" + body,
		"followup_questions": []string{"F1", "F2", "F3", "F4"},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": string(raw)}}
	w := NewLLMWriter(ai, "gpt-4o", 100_000)

	report, err := w.Write(context.Background(), "q", model.CategoryDIY, okResults())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(report.MarkdownReport) > maxReportChars {
		t.Errorf("report body is %d bytes, cap is %d", len(report.MarkdownReport), maxReportChars)
	}
	if !strings.HasSuffix(report.MarkdownReport, truncationMark) {
		t.Error("truncated report misses truncation mark")
	}
	if !utf8.ValidString(report.MarkdownReport) {
		t.Error("truncation split a rune")
	}
	if report.ShortSummary != "Kurz" {
		t.Errorf("short summary = %q", report.ShortSummary)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	s := strings.Repeat("€", 10) // 3 bytes each
	for max := 0; max <= len(s); max++ {
		got := truncate(s, max)
		if len(got) > max {
			t.Fatalf("truncate(%d) returned %d bytes", max, len(got))
		}
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%d) split a rune", max)
		}
	}
	if got := truncate("kurz", 100); got != "kurz" {
		t.Errorf("short string mangled: %q", got)
	}
}

func TestWriteBudgetTruncationIsRuneSafe(t *testing.T) {
	ai := &scriptedAI{jsonBy: map[string]string{"PremiumReport": goodReport}}
	w := NewLLMWriter(ai, "gpt-4o", 100)

	// 3-byte runes; the 400-byte char budget does not land on a rune
	// boundary.
	if _, err := w.Write(context.Background(), "q", model.CategoryDIY, []model.SearchResult{
		{Index: 0, Summary: strings.Repeat("€", 500)},
	}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	prompt := ai.lastMessages[len(ai.lastMessages)-1].Content
	if !utf8.ValidString(prompt) {
		t.Error("budgeted prompt contains a split rune")
	}
	if !strings.Contains(prompt, "[Gekuerzt]") {
		t.Error("truncated summary misses truncation mark")
	}
}

func TestWriteCountTokensFailureIsFatal(t *testing.T) {
	ai := &scriptedAI{
		jsonBy:   map[string]string{"PremiumReport": goodReport},
		tokenErr: errors.New("unknown encoding"),
	}
	w := NewLLMWriter(ai, "gpt-4o", 10)

	results := []model.SearchResult{
		{Index: 0, Summary: strings.Repeat("x", 400)},
		{Index: 1, Summary: strings.Repeat("y", 400)},
	}
	if _, err := w.Write(context.Background(), "q", model.CategoryDIY, results); !domain.IsExternalServiceError(err) {
		t.Fatalf("got %v, want ExternalServiceError", err)
	}
}
