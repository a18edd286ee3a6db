package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name       string
		issues     []Issue
		hardChecks []HardCheckResult
		want       RunStatus
	}{
		{"clean", nil, []HardCheckResult{{Passed: true}}, StatusOK},
		{"critical issue", []Issue{{Severity: SeverityCritical}}, nil, StatusNeedsReview},
		{"minor issue only", []Issue{{Severity: SeverityMinor}}, []HardCheckResult{{Passed: true}}, StatusOK},
		{"failed hard check", nil, []HardCheckResult{{Passed: false}}, StatusNeedsReview},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DeriveStatus(c.issues, c.hardChecks))
		})
	}
}

func TestCapabilitiesFor(t *testing.T) {
	assert.Equal(t, Capabilities{HasState: false, HasVerifyRepair: false}, CapabilitiesFor(ConditionA0))
	assert.Equal(t, Capabilities{HasState: true, HasVerifyRepair: false}, CapabilitiesFor(ConditionA1))
	assert.Equal(t, Capabilities{HasState: false, HasVerifyRepair: true}, CapabilitiesFor(ConditionA2))
	assert.Equal(t, Capabilities{HasState: true, HasVerifyRepair: true}, CapabilitiesFor(ConditionA3))
}

func TestUsageAdd(t *testing.T) {
	u := Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	u.Add(Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})
	assert.Equal(t, Usage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18}, u)
}

func TestScoreBreakdownClamp01(t *testing.T) {
	s := ScoreBreakdown{Adequacy: 1.2, Fluency: -0.3, ConstraintCompliance: 0.5, StyleFit: 0, Overall: 2}
	s.Clamp01()
	assert.Equal(t, ScoreBreakdown{Adequacy: 1, Fluency: 0, ConstraintCompliance: 0.5, StyleFit: 0, Overall: 1}, s)
}

func TestTimingsAdd(t *testing.T) {
	tm := NewTimings()
	tm.Add("translate", 10)
	tm.Add("translate", 5)
	tm.Add("verify", 3)
	assert.Equal(t, int64(15), tm.Stages["translate"])
	assert.Equal(t, int64(3), tm.Stages["verify"])
}
