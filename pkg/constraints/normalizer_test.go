package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/models"
)

func TestNormalizeScalarOverride(t *testing.T) {
	defaults := models.ConstraintPartial{Tone: "neutral", Register: "polite"}
	sample := models.ConstraintPartial{Tone: "casual"}

	out, err := Normalize(defaults, sample)
	require.NoError(t, err)
	assert.Equal(t, "casual", out.Tone)
	assert.Equal(t, "polite", out.Register)
	assert.Equal(t, "en", out.TargetLang)
}

func TestNormalizeFormatShallowMerge(t *testing.T) {
	defaults := models.ConstraintPartial{Format: models.FormatConstraints{MaxChars: 200, KeepLineBreaks: true}}
	sample := models.ConstraintPartial{Format: models.FormatConstraints{MaxChars: 80}}

	out, err := Normalize(defaults, sample)
	require.NoError(t, err)
	assert.Equal(t, 80, out.Format.MaxChars)
	assert.True(t, out.Format.KeepLineBreaks)
}

func TestNormalizeListsConcatenateWithDuplicates(t *testing.T) {
	defaults := models.ConstraintPartial{Glossary: []models.GlossaryEntry{{JA: "鍵", EN: "Key", Strict: true}}}
	sample := models.ConstraintPartial{Glossary: []models.GlossaryEntry{{JA: "鍵", EN: "Key", Strict: true}}}

	out, err := Normalize(defaults, sample)
	require.NoError(t, err)
	assert.Len(t, out.Glossary, 2)
}

func TestNormalizeRejectsNegativeMaxChars(t *testing.T) {
	_, err := Normalize(models.ConstraintPartial{}, models.ConstraintPartial{Format: models.FormatConstraints{MaxChars: -1}})
	require.Error(t, err)
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestNormalizeRejectsInvalidBannedPattern(t *testing.T) {
	_, err := Normalize(models.ConstraintPartial{}, models.ConstraintPartial{BannedPatterns: []string{"("}})
	require.Error(t, err)
}
