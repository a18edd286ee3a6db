package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/models"
)

func TestStateBuilderHeuristicWithoutComponent(t *testing.T) {
	b := NewStateBuilder(nil, nil, nil)
	sample := models.Sample{SourceText: "こんにちは、世界。", Context: "greeting scene"}

	state, usage, err := b.Build(context.Background(), sample)
	require.NoError(t, err)
	assert.Equal(t, "unknown", state.Speaker)
	assert.Equal(t, "unknown", state.Addressee)
	assert.Equal(t, sample.SourceText, state.CoreMeaning)
	assert.Equal(t, sample.Context, state.Implicature)
	assert.Empty(t, state.Entities)
	assert.Equal(t, models.Usage{}, usage)
}

func TestStateBuilderTruncatesLongUtterance(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	b := NewStateBuilder(nil, nil, nil)
	state, _, err := b.Build(context.Background(), models.Sample{SourceText: long})
	require.NoError(t, err)
	assert.Len(t, state.Utterance, 120)
}
