package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/2nod/evalrunner/pkg/hardcheck"
	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

const verifierSystemDefault = "You are a meticulous translation reviewer. Reply with strict JSON {\"issues\": [...]}."

// Verifier runs the hard-check engine and, when a gateway is configured,
// the LLM reviewer.
type Verifier struct {
	gateway   *llm.Gateway
	resolver  *prompt.Resolver
	component *Component
	toggles   hardcheck.Toggles
	maxLength int
}

// NewVerifier builds a Verifier. component may be nil to skip the LLM pass.
func NewVerifier(gateway *llm.Gateway, resolver *prompt.Resolver, component *Component, toggles hardcheck.Toggles, maxLength int) *Verifier {
	return &Verifier{gateway: gateway, resolver: resolver, component: component, toggles: toggles, maxLength: maxLength}
}

type llmIssuesPayload struct {
	Issues []models.Issue `json:"issues"`
}

// Verify returns the combined issue list (hard-check-derived issues first,
// then LLM-derived issues), the hard-check results, and tokens spent.
func (v *Verifier) Verify(ctx context.Context, sourceText, translation string, constraints models.ConstraintSet, sample models.Sample) ([]models.Issue, []models.HardCheckResult, models.Usage, error) {
	hardResults, hardIssues := hardcheck.Run(sourceText, translation, constraints, v.toggles, v.maxLength)

	if v.component == nil || v.gateway == nil {
		return hardIssues, hardResults, models.Usage{}, nil
	}

	vars := map[string]string{
		"text":        sourceText,
		"context":     sample.Context,
		"translation": translation,
		"constraints": renderConstraintsMarkdown(constraints),
	}
	comp := *v.component
	comp.Model.JSONMode = true

	output, usage, err := call(ctx, v.gateway, v.resolver, comp, vars, verifierSystemDefault)
	if err != nil {
		if isLLMError(err) {
			return hardIssues, hardResults, models.Usage{}, nil
		}
		return nil, nil, models.Usage{}, err
	}

	var payload llmIssuesPayload
	if err := json.Unmarshal([]byte(output), &payload); err != nil {
		return hardIssues, hardResults, usage, nil
	}

	for i := range payload.Issues {
		if payload.Issues[i].ID == "" {
			payload.Issues[i].ID = stableIssueID(payload.Issues[i].Type, payload.Issues[i].Rationale)
		}
	}

	combined := append(append([]models.Issue{}, hardIssues...), payload.Issues...)
	return combined, hardResults, usage, nil
}

func stableIssueID(issueType models.IssueType, rationale string) string {
	sum := sha256.Sum256([]byte(string(issueType) + "|" + rationale))
	return fmt.Sprintf("%x", sum[:8])
}
