// Package llm implements the gateway: the sole doorway to any model
// provider, combining a provider abstraction, an on-disk response cache,
// and a sliding-window rate limiter.
package llm

import "context"

// ResponseFormat selects the shape of the provider's output.
type ResponseFormat string

const (
	FormatText ResponseFormat = "text"
	FormatJSON ResponseFormat = "json"
)

// Message is one chat-style turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options carries sampling parameters common to every provider.
type Options struct {
	Temperature     float64        `json:"temperature,omitempty"`
	MaxOutputTokens int            `json:"maxOutputTokens,omitempty"`
	ResponseFormat  ResponseFormat `json:"responseFormat,omitempty"`
}

// Request is the provider-agnostic request contract.
type Request struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Options  Options   `json:"options"`
}

// Usage reports token consumption for a single call.
type Usage struct {
	PromptTokens     int `json:"prompt"`
	CompletionTokens int `json:"completion"`
	TotalTokens      int `json:"total"`
}

// Response is the provider-agnostic response contract.
type Response struct {
	Output string         `json:"output"`
	Usage  Usage          `json:"usage"`
	Raw    map[string]any `json:"raw,omitempty"`
}

// Provider is implemented by every model backend variant (mock, openai, ...).
// A new provider only adds a new variant; the gateway never needs to change.
type Provider interface {
	Execute(ctx context.Context, req Request) (Response, error)
}
