// File: internal/infra/agents/mocks_test.go
package agents

import (
	"context"
	"sync"

	"diy-research-agent/internal/domain/ports/adapter"
)

// scriptedAI returns canned responses and records prompts. Either the
// per-schema response (keyed by schema name) or the flat text response is
// served, whichever matches the call.
type scriptedAI struct {
	mu sync.Mutex

	text     string // response for Complete
	jsonBy   map[string]string
	err      error
	tokens   int
	tokenErr error

	completeCalls int
	jsonCalls     int
	lastModel     string
	lastMessages  []adapter.Message
	lastSchema    string
}

func (f *scriptedAI) Complete(_ context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	f.lastModel = model
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *scriptedAI) CompleteJSON(_ context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jsonCalls++
	f.lastModel = model
	f.lastMessages = messages
	f.lastSchema = schema.Name
	if f.err != nil {
		return "", f.err
	}
	return f.jsonBy[schema.Name], nil
}

func (f *scriptedAI) CountTokens(_ context.Context, _ string, messages []adapter.Message) (int, error) {
	if f.tokenErr != nil {
		return 0, f.tokenErr
	}
	if f.tokens > 0 {
		return f.tokens, nil
	}
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (f *scriptedAI) ListModels(_ context.Context) ([]string, error) {
	return []string{"gpt-4o-mini"}, nil
}

// memSummaryCache is an in-memory SummaryCache for searcher tests.
type memSummaryCache struct {
	mu    sync.Mutex
	store map[string]string
	gets  int
	sets  int
}

func newMemSummaryCache() *memSummaryCache {
	return &memSummaryCache{store: make(map[string]string)}
}

func (c *memSummaryCache) Get(_ context.Context, model, query string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	s, ok := c.store[model+"|"+query]
	return s, ok
}

func (c *memSummaryCache) Set(_ context.Context, model, query, summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.store[model+"|"+query] = summary
}
