package hardcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/models"
)

func findResult(results []models.HardCheckResult, id string) (models.HardCheckResult, bool) {
	for _, r := range results {
		if r.ID == id {
			return r, true
		}
	}
	return models.HardCheckResult{}, false
}

func TestNoDisallowedJapaneseFailsOnCJK(t *testing.T) {
	results, issues := Run("こんにちは、世界。", "こんにちは, 世界.", models.ConstraintSet{}, DefaultToggles(), 0)

	r, ok := findResult(results, "noDisallowedJapanese")
	require.True(t, ok)
	assert.False(t, r.Passed)
	require.Len(t, issues, 1)
	assert.Equal(t, models.SeverityMajor, issues[0].Severity)
}

func TestNoDisallowedJapaneseAllowsWhitelistedTokens(t *testing.T) {
	constraints := models.ConstraintSet{AllowJapaneseTokens: []string{"世界"}}
	results, _ := Run("", "hello 世界", constraints, DefaultToggles(), 0)

	r, ok := findResult(results, "noDisallowedJapanese")
	require.True(t, ok)
	assert.True(t, r.Passed)
}

func TestGlossaryStrictMatchesFailsWhenMissing(t *testing.T) {
	constraints := models.ConstraintSet{Glossary: []models.GlossaryEntry{{JA: "鍵", EN: "Key", Strict: true}}}
	results, issues := Run("", "鍵はここ.", constraints, DefaultToggles(), 0)

	r, ok := findResult(results, "glossaryStrictMatches")
	require.True(t, ok)
	assert.False(t, r.Passed)
	require.Len(t, issues, 2) // noDisallowedJapanese also fails on the untranslated source text
	found := false
	for _, i := range issues {
		if i.Type == models.IssueStyleViolation && i.Severity == models.SeverityMinor {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMaxLengthUsesTighterBound(t *testing.T) {
	constraints := models.ConstraintSet{Format: models.FormatConstraints{MaxChars: 5}}
	results, _ := Run("", "123456789", constraints, DefaultToggles(), 100)

	r, ok := findResult(results, "maxLength")
	require.True(t, ok)
	assert.False(t, r.Passed)
}

func TestNoMetaTalkCaseInsensitive(t *testing.T) {
	results, _ := Run("", "As An AI, I cannot help.", models.ConstraintSet{}, DefaultToggles(), 0)

	r, ok := findResult(results, "noMetaTalk")
	require.True(t, ok)
	assert.False(t, r.Passed)
}

func TestFormatPreservedOnlyWhenRequired(t *testing.T) {
	constraints := models.ConstraintSet{Format: models.FormatConstraints{KeepLineBreaks: true}}
	results, issues := Run("a\nb", "a b", constraints, DefaultToggles(), 0)

	r, ok := findResult(results, "formatPreserved")
	require.True(t, ok)
	assert.False(t, r.Passed)
	found := false
	for _, i := range issues {
		if i.Type == models.IssueFormatViolation {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTogglesDisableRules(t *testing.T) {
	toggles := DefaultToggles()
	toggles.NoMetaTalk = false
	results, _ := Run("", "As an AI", models.ConstraintSet{}, toggles, 0)

	_, ok := findResult(results, "noMetaTalk")
	assert.False(t, ok)
}
