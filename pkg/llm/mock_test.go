package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderPunctuationSubstitution(t *testing.T) {
	p := NewMockProvider()
	resp, err := p.Execute(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "こんにちは、世界。"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "こんにちは, 世界.", resp.Output)
}

func TestMockProviderUsesLastUserMessage(t *testing.T) {
	p := NewMockProvider()
	resp, err := p.Execute(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "ignored"},
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "ignored too"},
			{Role: "user", Content: "鍵はここ。"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "鍵はここ.", resp.Output)
}

func TestMockProviderDeterministic(t *testing.T) {
	p := NewMockProvider()
	req := Request{Messages: []Message{{Role: "user", Content: "こんにちは！　世界？"}}}

	r1, err1 := p.Execute(context.Background(), req)
	r2, err2 := p.Execute(context.Background(), req)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1.Output, r2.Output)
}
