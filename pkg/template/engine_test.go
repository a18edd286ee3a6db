package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	out := Render("Translate: {{text}} with context {{ context }}", map[string]string{
		"text":    "hello",
		"context": "greeting",
	})
	assert.Equal(t, "Translate: hello with context greeting", out)
}

func TestRenderMissingValueIsEmptyString(t *testing.T) {
	out := Render("{{unknown}} world", map[string]string{})
	assert.Equal(t, " world", out)
}

func TestRenderRoundTripWhenNoPlaceholders(t *testing.T) {
	tmpl := "a static prompt with no tokens at all"
	assert.Equal(t, tmpl, Render(tmpl, map[string]string{"text": "ignored"}))
}

func TestRenderIsInjectiveForDistinctSubstitutions(t *testing.T) {
	tmpl := "prefix {{a}} middle {{b}} suffix"
	out1 := Render(tmpl, map[string]string{"a": "one", "b": "two"})
	out2 := Render(tmpl, map[string]string{"a": "three", "b": "four"})
	assert.NotEqual(t, out1, out2)
}

func TestVariablesExtractsDistinctNamesInOrder(t *testing.T) {
	assert.Equal(t, []string{"text", "context", "state"}, Variables("{{text}} {{context}} {{text}} {{state}}"))
}
