package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/models"
)

func TestRepairerNoIssuesReturnsUnchanged(t *testing.T) {
	r := NewRepairer(nil, nil, nil)
	out, usage, err := r.Repair(context.Background(), "src", "translation", nil, models.ConstraintSet{}, nil, models.Sample{})
	require.NoError(t, err)
	assert.Equal(t, "translation", out)
	assert.Equal(t, models.Usage{}, usage)
}

func TestRepairerHeuristicStripsBannedPatterns(t *testing.T) {
	r := NewRepairer(nil, nil, nil)
	constraints := models.ConstraintSet{BannedPatterns: []string{"damn"}}
	issues := []models.Issue{{Type: models.IssueStyleViolation, Severity: models.SeverityMinor}}

	out, _, err := r.Repair(context.Background(), "src", "well damn it", issues, constraints, nil, models.Sample{})
	require.NoError(t, err)
	assert.NotContains(t, out, "damn")
}

func TestRepairerHeuristicTruncatesOverLength(t *testing.T) {
	r := NewRepairer(nil, nil, nil)
	constraints := models.ConstraintSet{Format: models.FormatConstraints{MaxChars: 5}}
	issues := []models.Issue{{Severity: models.SeverityMinor}}

	out, _, err := r.Repair(context.Background(), "src", "0123456789", issues, constraints, nil, models.Sample{})
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(out)), 5)
}
