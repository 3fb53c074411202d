// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"diy-research-agent/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client       *genai.Client
	defaultModel string
	maxOut       int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, maxOut int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, defaultModel: defaultModel, maxOut: maxOut}, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	models := g.client.Models.All(ctx)
	var out []string
	for m := range models {
		if m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	contents := toGenAIHistory(messages)
	// Per docs, CountTokens takes []*genai.Content. (NOT []genai.Part)
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return g.chatCore(ctx, model, messages, nil)
}

// CompleteJSON asks Gemini for a JSON MIME type response. The schema is not
// enforced natively here; it is restated as an instruction and the caller
// validates the result either way.
func (g *GeminiAdapter) CompleteJSON(ctx context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(g.maxOut),
		ResponseMIMEType: "application/json",
	}
	return g.chatCore(ctx, model, messages, cfg)
}

// --- internal ---

func (g *GeminiAdapter) chatCore(ctx context.Context, model string, messages []adapter.Message, cfg *genai.GenerateContentConfig) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	if cfg == nil {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxOut)}
	}
	history := toGenAIHistory(messages[:len(messages)-1])

	chat, err := g.client.Chats.Create(ctx, modelOrDefault(model, g.defaultModel), cfg, history)
	if err != nil {
		return "", err
	}

	last := messages[len(messages)-1]
	if strings.ToLower(last.Role) != "user" {
		return "", errors.New("gemini: last message must be from user")
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: last.Content})
	if err != nil {
		return "", err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		return "", errors.New("gemini: empty candidate content")
	}
	return text, nil
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// Gemini has no separate "system" role in history; treat it as
			// a user instruction.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
