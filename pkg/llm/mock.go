package llm

import (
	"context"
	"regexp"
	"strings"
)

// MockProvider performs a deterministic Japanese-punctuation-to-ASCII
// substitution over the last user message. It is free of network I/O and
// produces stable outputs, making it the provider of choice for tests and
// for scenarios S1-S6.
type MockProvider struct{}

// NewMockProvider builds a MockProvider.
func NewMockProvider() *MockProvider { return &MockProvider{} }

var punctuationReplacer = strings.NewReplacer(
	"。", ".",
	"、", ",",
	"！", "!",
	"？", "?",
)

var collapseWhitespace = regexp.MustCompile(`\s+`)

func (p *MockProvider) Execute(_ context.Context, req Request) (Response, error) {
	last := lastUserMessage(req.Messages)
	out := punctuationReplacer.Replace(last)
	out = collapseWhitespace.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	return Response{
		Output: out,
		Usage: Usage{
			PromptTokens:     len(strings.Fields(last)),
			CompletionTokens: len(strings.Fields(out)),
			TotalTokens:      len(strings.Fields(last)) + len(strings.Fields(out)),
		},
		Raw: map[string]any{"provider": "mock"},
	}, nil
}

func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
