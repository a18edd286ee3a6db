// Package pipeline implements the five stages driven per (sample,
// condition) pair: state builder, translator, verifier, repairer, judge.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
	"github.com/2nod/evalrunner/pkg/template"
)

// ModelSpec selects a provider/model and its sampling parameters.
type ModelSpec struct {
	Provider        string  `yaml:"provider"`
	Name            string  `yaml:"name"`
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"topP,omitempty"`
	MaxOutputTokens int     `yaml:"maxOutputTokens,omitempty"`
	JSONMode        bool    `yaml:"jsonMode,omitempty"`
}

// Component is the configuration for one pipeline stage: a model and a
// prompt source.
type Component struct {
	Model  ModelSpec      `yaml:"model"`
	Prompt prompt.Source  `yaml:"prompt"`
	Params map[string]any `yaml:"params,omitempty"`
}

// call resolves and renders the component's prompt with vars, sends it
// through the gateway, and returns the output text plus usage. The system
// message defaults to systemDefault when the resolved prompt has none.
func call(ctx context.Context, gw *llm.Gateway, resolver *prompt.Resolver, c Component, vars map[string]string, systemDefault string) (string, models.Usage, error) {
	resolved, err := resolver.Resolve(c.Prompt)
	if err != nil {
		return "", models.Usage{}, err
	}

	system := resolved.System
	if system == "" {
		system = systemDefault
	}
	userText := template.Render(resolved.Template, vars)

	messages := []llm.Message{}
	if system != "" {
		messages = append(messages, llm.Message{Role: "system", Content: system})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userText})

	format := llm.FormatText
	if c.Model.JSONMode {
		format = llm.FormatJSON
	}

	req := llm.Request{
		Provider: c.Model.Provider,
		Model:    c.Model.Name,
		Messages: messages,
		Options: llm.Options{
			Temperature:     c.Model.Temperature,
			MaxOutputTokens: c.Model.MaxOutputTokens,
			ResponseFormat:  format,
		},
	}

	resp, err := gw.Execute(ctx, req)
	if err != nil {
		return "", models.Usage{}, err
	}

	usage := models.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return resp.Output, usage, nil
}

// isLLMError reports whether err is a provider call failure (non-success
// response or malformed body) as opposed to a configuration problem
// (unknown provider, bad prompt source) or context cancellation. Only
// LLM errors are recoverable locally per the verify/state/judge stages'
// fallback-to-heuristic contract.
func isLLMError(err error) bool {
	var llmErr *models.LLMError
	return errors.As(err, &llmErr)
}

// renderConstraintsMarkdown renders a constraint set into a canonical
// markdown form: one field per line, glossary list, banned patterns list.
func renderConstraintsMarkdown(c models.ConstraintSet) string {
	var b strings.Builder
	b.WriteString("- targetLang: " + c.TargetLang + "\n")
	if c.Tone != "" {
		b.WriteString("- tone: " + c.Tone + "\n")
	}
	if c.Register != "" {
		b.WriteString("- register: " + c.Register + "\n")
	}
	if c.ReadingLevel != "" {
		b.WriteString("- readingLevel: " + c.ReadingLevel + "\n")
	}
	if c.Format.MaxChars > 0 {
		b.WriteString("- format.maxChars: " + strconv.Itoa(c.Format.MaxChars) + "\n")
	}
	if c.Format.KeepLineBreaks {
		b.WriteString("- format.keepLineBreaks: true\n")
	}
	if len(c.Glossary) > 0 {
		b.WriteString("- glossary:\n")
		for _, g := range c.Glossary {
			b.WriteString("  - " + g.JA + " -> " + g.EN)
			if g.Strict {
				b.WriteString(" (strict)")
			}
			b.WriteString("\n")
		}
	}
	if len(c.BannedPatterns) > 0 {
		b.WriteString("- bannedPatterns:\n")
		for _, p := range c.BannedPatterns {
			b.WriteString("  - " + p + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStateJSON(s *models.State) string {
	if s == nil {
		return "not provided"
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "not provided"
	}
	return string(data)
}

