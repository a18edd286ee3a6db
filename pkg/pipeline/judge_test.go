package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

func TestJudgeHeuristicWithoutComponent(t *testing.T) {
	j := NewJudge(nil, nil, nil, 3)
	score, usage, err := j.Score(context.Background(), "こんにちは 世界", "hello world", "", models.ConstraintSet{})
	require.NoError(t, err)
	assert.Equal(t, models.Usage{}, usage)
	assert.GreaterOrEqual(t, score.Overall, 0.0)
	assert.LessOrEqual(t, score.Overall, 1.0)
}

// sequentialScoreProvider returns a different fixed "overall" score JSON
// payload on each call, cycling through a fixed sequence, to exercise the
// judge's median reduction across runs.
type sequentialScoreProvider struct {
	overalls []float64
	calls    int
}

func (p *sequentialScoreProvider) Execute(_ context.Context, _ llm.Request) (llm.Response, error) {
	v := p.overalls[p.calls%len(p.overalls)]
	p.calls++
	out := fmt.Sprintf(`{"adequacy":%f,"fluency":%f,"constraintCompliance":%f,"styleFit":%f,"overall":%f}`, v, v, v, v, v)
	return llm.Response{Output: out, Usage: llm.Usage{TotalTokens: 10}}, nil
}

func TestJudgeMedianReductionAcrossRuns(t *testing.T) {
	provider := &sequentialScoreProvider{overalls: []float64{0.2, 0.5, 0.9}}
	gw := llm.NewGateway(map[string]llm.Provider{"mock": provider}, nil, nil)
	resolver := prompt.NewResolver(nil)
	comp := &Component{
		Model:  ModelSpec{Provider: "mock", JSONMode: true},
		Prompt: prompt.Source{Template: "score {{translation}}"},
	}
	j := NewJudge(gw, resolver, comp, 3)

	score, usage, err := j.Score(context.Background(), "src", "translation", "", models.ConstraintSet{})
	require.NoError(t, err)
	assert.Equal(t, 3, provider.calls)
	assert.Equal(t, 30, usage.TotalTokens)
	assert.InDelta(t, 0.5, score.Overall, 1e-9)
}

func TestJudgeClampsRunsToAtLeastOne(t *testing.T) {
	j := NewJudge(nil, nil, nil, 0)
	assert.Equal(t, 1, j.runs)
}
