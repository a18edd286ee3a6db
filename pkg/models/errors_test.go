package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	base := errors.New("unknown provider")

	withPath := &ConfigError{Path: "config.yaml", Err: base}
	assert.Equal(t, "config config.yaml: unknown provider", withPath.Error())
	assert.True(t, errors.Is(withPath, base))

	withoutPath := &ConfigError{Err: base}
	assert.Equal(t, "config: unknown provider", withoutPath.Error())
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "conditions", Message: "must be non-empty", Status: 422}
	assert.Equal(t, "conditions: must be non-empty", err.Error())

	bare := &ValidationError{Message: "experiment is not in draft status", Status: 409}
	assert.Equal(t, "experiment is not in draft status", bare.Error())
}

func TestLLMError(t *testing.T) {
	base := errors.New("connection reset")
	err := &LLMError{Provider: "openai", StatusCode: 503, Body: "unavailable", Err: base}

	require.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSinkError(t *testing.T) {
	base := errors.New("disk full")
	err := &SinkError{Sink: "jsonl", Err: base}

	assert.Equal(t, "sink jsonl: disk full", err.Error())
	assert.True(t, errors.Is(err, base))
}
