package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/hardcheck"
	"github.com/2nod/evalrunner/pkg/models"
)

func TestVerifierHardChecksOnlyWithoutComponent(t *testing.T) {
	v := NewVerifier(nil, nil, nil, hardcheck.DefaultToggles(), 0)
	issues, results, usage, err := v.Verify(context.Background(), "こんにちは、世界。", "こんにちは, 世界.", models.ConstraintSet{}, models.Sample{})
	require.NoError(t, err)
	assert.NotEmpty(t, issues)
	assert.NotEmpty(t, results)
	assert.Equal(t, models.Usage{}, usage)
}

func TestVerifierGlossaryStrictFailureScenario(t *testing.T) {
	constraints := models.ConstraintSet{Glossary: []models.GlossaryEntry{{JA: "鍵", EN: "Key", Strict: true}}}
	v := NewVerifier(nil, nil, nil, hardcheck.DefaultToggles(), 0)
	_, results, _, err := v.Verify(context.Background(), "鍵はここ。", "鍵はここ.", constraints, models.Sample{})
	require.NoError(t, err)

	assert.False(t, models.AllPassed(results))
}
