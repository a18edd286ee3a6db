package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

func newMockGateway() *llm.Gateway {
	return llm.NewGateway(map[string]llm.Provider{"mock": llm.NewMockProvider()}, nil, nil)
}

func TestTranslatorProducesMockOutputAndTrims(t *testing.T) {
	gw := newMockGateway()
	resolver := prompt.NewResolver(nil)
	comp := Component{
		Model:  ModelSpec{Provider: "mock"},
		Prompt: prompt.Source{Template: "{{text}}\n\n"},
	}
	tr := NewTranslator(gw, resolver, comp)

	sample := models.Sample{SourceText: "こんにちは、世界。"}
	draft, usage, err := tr.Translate(context.Background(), sample, models.ConstraintSet{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "こんにちは, 世界.", draft)
	assert.Greater(t, usage.TotalTokens, 0)
}

func TestTranslatorExposesStateAndConstraintsVariables(t *testing.T) {
	gw := newMockGateway()
	resolver := prompt.NewResolver(nil)
	comp := Component{
		Model:  ModelSpec{Provider: "mock"},
		Prompt: prompt.Source{Template: "{{text}} state={{state}} constraints={{constraints}}"},
	}
	tr := NewTranslator(gw, resolver, comp)

	state := &models.State{Utterance: "hi"}
	constraints := models.ConstraintSet{TargetLang: "en", Tone: "formal"}

	draft, _, err := tr.Translate(context.Background(), models.Sample{SourceText: "text"}, constraints, state)
	require.NoError(t, err)
	assert.Contains(t, draft, "text")
	assert.Contains(t, draft, `"utterance": "hi"`)
	assert.Contains(t, draft, "- tone: formal")
}
