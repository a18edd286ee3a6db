package llm

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/2nod/evalrunner/pkg/models"
)

// OpenAIProvider is the gateway's openai variant, backed by
// github.com/sashabaranov/go-openai.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider builds an OpenAIProvider for the given API key.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Execute(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	ccr := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Options.Temperature),
	}
	if req.Options.MaxOutputTokens > 0 {
		ccr.MaxCompletionTokens = req.Options.MaxOutputTokens
	}
	if req.Options.ResponseFormat == FormatJSON {
		ccr.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := p.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return Response{}, &models.LLMError{Provider: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return Response{}, &models.LLMError{Provider: "openai", Body: "no choices returned"}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	return Response{
		Output: content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Raw: map[string]any{"model": resp.Model, "id": resp.ID},
	}, nil
}
