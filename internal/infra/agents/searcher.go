package agents

import (
	"context"
	"errors"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/domain/model"
	"diy-research-agent/internal/domain/ports/adapter"
	"diy-research-agent/internal/domain/ports/agent"
	"diy-research-agent/internal/infra/metrics"
)

// Compile-time check
var _ agent.Searcher = (*LLMSearcher)(nil)

// SummaryCache is an optional cache-aside store for search summaries.
// Errors inside the cache must be swallowed by the implementation; a cache
// problem never fails a search.
type SummaryCache interface {
	Get(ctx context.Context, model, query string) (string, bool)
	Set(ctx context.Context, model, query, summary string)
}

// LLMSearcher answers one planned search task with a short research
// summary, consulting the cache first when one is wired.
type LLMSearcher struct {
	ai    adapter.AIServiceAdapter
	model string
	cache SummaryCache // may be nil
}

func NewLLMSearcher(ai adapter.AIServiceAdapter, model string, cache SummaryCache) *LLMSearcher {
	return &LLMSearcher{ai: ai, model: model, cache: cache}
}

const searcherSystemPrompt = "Du bist ein Heimwerker-Rechercheur. Fasse fuer die folgende Suchanfrage die wichtigsten Erkenntnisse in 2-3 Absaetzen zusammen. " +
	"Bleibe strikt bei DIY-Inhalten und vermeide fachfremde Hinweise."

func (s *LLMSearcher) Search(ctx context.Context, task model.SearchTask) (model.SearchResult, error) {
	result := model.SearchResult{Index: task.Index, Query: task.Query}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, s.model, task.Query); ok {
			metrics.IncCacheOp("hit")
			result.Summary = cached
			return result, nil
		}
		metrics.IncCacheOp("miss")
	}

	messages := []adapter.Message{
		{Role: "system", Content: searcherSystemPrompt},
		{Role: "user", Content: "Suchanfrage: " + task.Query},
	}
	summary, err := complete(ctx, s.ai, "search", s.model, messages)
	if err != nil {
		return result, domain.NewExternalServiceError("search", err)
	}
	if summary == "" {
		return result, domain.NewExternalServiceError("search", errEmptySummary)
	}

	if s.cache != nil {
		s.cache.Set(ctx, s.model, task.Query, summary)
	}
	result.Summary = summary
	return result, nil
}

var errEmptySummary = errors.New("empty search summary")
