package pipeline

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

const repairerSystemDefault = "You repair a draft translation to resolve the listed issues while preserving meaning."

// Repairer applies either deterministic heuristics or an LLM repair pass.
// It never inspects issue severities; that policy lives in the orchestrator.
type Repairer struct {
	gateway   *llm.Gateway
	resolver  *prompt.Resolver
	component *Component
}

// NewRepairer builds a Repairer. component may be nil to use heuristics.
func NewRepairer(gateway *llm.Gateway, resolver *prompt.Resolver, component *Component) *Repairer {
	return &Repairer{gateway: gateway, resolver: resolver, component: component}
}

// Repair returns the repaired translation and tokens spent. If issues is
// empty the translation is returned unchanged.
func (r *Repairer) Repair(ctx context.Context, sourceText, current string, issues []models.Issue, constraints models.ConstraintSet, state *models.State, sample models.Sample) (string, models.Usage, error) {
	if len(issues) == 0 {
		return current, models.Usage{}, nil
	}

	if r.component == nil || r.gateway == nil {
		return heuristicRepair(current, constraints), models.Usage{}, nil
	}

	issuesJSON, _ := json.Marshal(issues)
	constraintsJSON, _ := json.Marshal(constraints)

	vars := map[string]string{
		"text":        sourceText,
		"context":     sample.Context,
		"translation": current,
		"issues":      string(issuesJSON),
		"constraints": string(constraintsJSON),
		"state":       renderStateJSON(state),
	}

	output, usage, err := call(ctx, r.gateway, r.resolver, *r.component, vars, repairerSystemDefault)
	if err != nil {
		return "", models.Usage{}, err
	}
	return strings.TrimSpace(output), usage, nil
}

func heuristicRepair(current string, constraints models.ConstraintSet) string {
	out := current
	for _, pattern := range constraints.BannedPatterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		out = re.ReplaceAllString(out, "")
	}

	if max := constraints.Format.MaxChars; max > 0 && len(out) > max {
		cut := max - 1
		if cut < 0 {
			cut = 0
		}
		out = out[:cut] + "…"
	}
	return out
}
