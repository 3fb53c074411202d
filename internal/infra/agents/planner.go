package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/domain/ports/agent"
)

// Compile-time check
var _ agent.Planner = (*LLMPlanner)(nil)

// LLMPlanner derives the search tasks for a query with one model call. A
// malformed model response falls back to a deterministic heuristic plan
// before the planner gives up, so a flaky model does not sink the job.
type LLMPlanner struct {
	ai      adapter.AIServiceAdapter
	model   string
	howMany int
}

func NewLLMPlanner(ai adapter.AIServiceAdapter, model string, howMany int) *LLMPlanner {
	if howMany <= 0 {
		howMany = 3
	}
	return &LLMPlanner{ai: ai, model: model, howMany: howMany}
}

var plannerSchema = adapter.JSONSchema{
	Name: "WebSearchPlan",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"searches": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"reason": map[string]any{"type": "string"},
						"query":  map[string]any{"type": "string"},
					},
					"required":             []string{"reason", "query"},
					"additionalProperties": false,
				},
				"minItems": 1,
				"maxItems": 10,
			},
		},
		"required":             []string{"searches"},
		"additionalProperties": false,
	},
}

// premiumKeywords trigger an extra brand-comparison slot, mirroring the
// product's material-heavy use cases.
var premiumKeywords = []string{"laminat", "parkett", "material", "boden"}

func (p *LLMPlanner) Plan(ctx context.Context, query, category string) ([]model.SearchTask, error) {
	systemPrompt := fmt.Sprintf(
		"Du bist ein Planer fuer Heimwerker-Recherchen. Erzeuge exakt %d Suchanfragen als JSON. "+
			"Felder: reason, query. Nur Heimwerker- und DIY-Themen sind zulaessig.", p.howMany)
	messages := []adapter.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: query},
	}

	raw, err := completeJSON(ctx, p.ai, "planner", p.model, messages, plannerSchema)
	if err != nil {
		return nil, domain.NewExternalServiceError("planner", err)
	}

	tasks, parseErr := p.parsePlan(raw)
	if parseErr != nil {
		tasks = p.heuristicPlan(query)
		if len(tasks) == 0 {
			return nil, domain.NewExternalServiceError("planner", parseErr)
		}
	}

	tasks = p.ensurePremiumSlot(tasks, query)
	for i := range tasks {
		tasks[i].Index = i
	}
	return tasks, nil
}

func (p *LLMPlanner) parsePlan(raw string) ([]model.SearchTask, error) {
	var parsed struct {
		Searches []struct {
			Reason string `json:"reason"`
			Query  string `json:"query"`
		} `json:"searches"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("malformed plan: %w", err)
	}
	if len(parsed.Searches) != p.howMany {
		return nil, fmt.Errorf("expected %d searches, got %d", p.howMany, len(parsed.Searches))
	}
	tasks := make([]model.SearchTask, 0, len(parsed.Searches))
	for _, s := range parsed.Searches {
		if strings.TrimSpace(s.Query) == "" {
			return nil, fmt.Errorf("plan contains empty search query")
		}
		tasks = append(tasks, model.SearchTask{Reason: s.Reason, Query: s.Query})
	}
	return tasks, nil
}

// heuristicPlan builds an emergency plan from typical DIY facets so the
// flow is not blocked by one bad model response.
func (p *LLMPlanner) heuristicPlan(query string) []model.SearchTask {
	seeds := []model.SearchTask{
		{Reason: "Materialien & Werkzeuge", Query: "Materialien und Werkzeuge fuer " + query},
		{Reason: "Schritt-fuer-Schritt Anleitung", Query: "Anleitung " + query},
		{Reason: "Sicherheit & Fehler vermeiden", Query: "Sicherheitscheck " + query},
	}
	if p.howMany < len(seeds) {
		return seeds[:p.howMany]
	}
	return seeds
}

// ensurePremiumSlot appends a brand-comparison search for material-related
// queries unless the plan already covers it.
func (p *LLMPlanner) ensurePremiumSlot(tasks []model.SearchTask, query string) []model.SearchTask {
	lowered := strings.ToLower(query)
	hit := false
	for _, kw := range premiumKeywords {
		if strings.Contains(lowered, kw) {
			hit = true
			break
		}
	}
	if !hit {
		return tasks
	}
	const premiumReason = "Premium-Optionen und Markenvergleich"
	for _, t := range tasks {
		if strings.EqualFold(t.Reason, premiumReason) {
			return tasks
		}
	}
	return append(tasks, model.SearchTask{
		Reason: premiumReason,
		Query:  "Premium Markenvergleich " + query,
	})
}
