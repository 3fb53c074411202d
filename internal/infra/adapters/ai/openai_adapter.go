package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"github.com/pkoukk/tiktoken-go"

	"diy-research-agent/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIAdapter implements adapter.AIServiceAdapter on the Chat Completions
// API.
type OpenAIAdapter struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIAdapter(apiKey, model string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIAdapter{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: 60 * time.Second,
	}, nil
}

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

func (o *OpenAIAdapter) Complete(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	return o.complete(ctx, model, messages, nil)
}

func (o *OpenAIAdapter) CompleteJSON(ctx context.Context, model string, messages []adapter.Message, schema adapter.JSONSchema) (string, error) {
	return o.complete(ctx, model, messages, &schema)
}

func (o *OpenAIAdapter) complete(ctx context.Context, model string, messages []adapter.Message, schema *adapter.JSONSchema) (string, error) {
	if model == "" {
		model = o.model
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.Name,
					Schema: schema.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openai: no choice content")
}

// CountTokens counts prompt tokens locally with tiktoken so callers can
// budget writer input without a network round-trip. Unknown models fall
// back to the cl100k_base encoding.
func (o *OpenAIAdapter) CountTokens(_ context.Context, model string, messages []adapter.Message) (int, error) {
	if model == "" {
		model = o.model
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, fmt.Errorf("tiktoken: %w", err)
		}
	}
	total := 0
	for _, m := range messages {
		// 4 covers the per-message framing tokens of the chat format.
		total += 4 + len(enc.Encode(m.Content, nil, nil))
	}
	return total, nil
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
