package pipeline

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

const judgeSystemDefault = "You are an impartial translation judge. Reply with strict JSON scoring the five dimensions."

// Judge scores a final translation on the five-dimensional rubric,
// reducing judgeRuns independent LLM calls by median per dimension.
type Judge struct {
	gateway   *llm.Gateway
	resolver  *prompt.Resolver
	component *Component
	runs      int
}

// NewJudge builds a Judge. component may be nil to always use the
// heuristic. runs is clamped to at least 1.
func NewJudge(gateway *llm.Gateway, resolver *prompt.Resolver, component *Component, runs int) *Judge {
	if runs < 1 {
		runs = 1
	}
	return &Judge{gateway: gateway, resolver: resolver, component: component, runs: runs}
}

// Score returns the reduced ScoreBreakdown and total tokens spent across
// every run.
func (j *Judge) Score(ctx context.Context, sourceText, translation, reference string, constraints models.ConstraintSet) (models.ScoreBreakdown, models.Usage, error) {
	if j.component == nil || j.gateway == nil {
		return heuristicScore(sourceText, translation, constraints), models.Usage{}, nil
	}

	adequacies := make([]float64, 0, j.runs)
	fluencies := make([]float64, 0, j.runs)
	compliances := make([]float64, 0, j.runs)
	styles := make([]float64, 0, j.runs)
	overalls := make([]float64, 0, j.runs)
	var total models.Usage

	for i := 0; i < j.runs; i++ {
		vars := map[string]string{
			"text":        sourceText,
			"translation": translation,
			"reference":   reference,
			"constraints": renderConstraintsMarkdown(constraints),
		}
		comp := *j.component
		comp.Model.JSONMode = true

		output, usage, err := call(ctx, j.gateway, j.resolver, comp, vars, judgeSystemDefault)
		if err != nil {
			if !isLLMError(err) {
				return models.ScoreBreakdown{}, models.Usage{}, err
			}
			score := heuristicScore(sourceText, translation, constraints)
			adequacies = append(adequacies, score.Adequacy)
			fluencies = append(fluencies, score.Fluency)
			compliances = append(compliances, score.ConstraintCompliance)
			styles = append(styles, score.StyleFit)
			overalls = append(overalls, score.Overall)
			continue
		}
		total.Add(usage)

		var score models.ScoreBreakdown
		if err := json.Unmarshal([]byte(output), &score); err != nil {
			score = heuristicScore(sourceText, translation, constraints)
		}
		score.Clamp01()

		adequacies = append(adequacies, score.Adequacy)
		fluencies = append(fluencies, score.Fluency)
		compliances = append(compliances, score.ConstraintCompliance)
		styles = append(styles, score.StyleFit)
		overalls = append(overalls, score.Overall)
	}

	reduced := models.ScoreBreakdown{
		Adequacy:             median(adequacies),
		Fluency:              median(fluencies),
		ConstraintCompliance: median(compliances),
		StyleFit:             median(styles),
		Overall:              median(overalls),
	}
	reduced.Clamp01()
	return reduced, total, nil
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// heuristicScore is used both as the fallback when no LLM is configured
// and when a judge iteration's output fails to parse.
func heuristicScore(sourceText, translation string, constraints models.ConstraintSet) models.ScoreBreakdown {
	adequacy := tokenOverlap(sourceText, translation)
	fluency := lengthBasedFluency(translation)
	constraintCompliance := 0.8
	styleFit := 0.8

	s := models.ScoreBreakdown{
		Adequacy:             adequacy,
		Fluency:              fluency,
		ConstraintCompliance: constraintCompliance,
		StyleFit:             styleFit,
	}
	s.Overall = clamp01(0.40*s.Adequacy + 0.20*s.Fluency + 0.25*s.ConstraintCompliance + 0.15*s.StyleFit)
	return s
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// tokenOverlap is a crude adequacy proxy: the ratio of the smaller to the
// larger whitespace-token count of source text and translation. It
// compares counts only; token content is not compared.
func tokenOverlap(sourceText, translation string) float64 {
	srcTokens := len(strings.Fields(sourceText))
	dstTokens := len(strings.Fields(translation))
	if srcTokens == 0 {
		if dstTokens == 0 {
			return 1
		}
		return 0
	}
	ratio := float64(dstTokens) / float64(srcTokens)
	if ratio > 1 {
		ratio = 1 / ratio
	}
	return clamp01(ratio)
}

func lengthBasedFluency(translation string) float64 {
	words := strings.Fields(translation)
	if len(words) == 0 {
		return 0
	}
	if len(words) < 3 {
		return 0.5
	}
	return 0.85
}
