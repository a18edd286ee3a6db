package pipeline

import (
	"context"
	"strings"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

const translatorSystemDefault = "You are a professional translator producing natural, faithful English translations of Japanese narrative text."

// Translator renders a single prompt exposing {{text}} {{context}} {{state}}
// {{constraints}} and calls the LLM.
type Translator struct {
	gateway   *llm.Gateway
	resolver  *prompt.Resolver
	component Component
}

// NewTranslator builds a Translator over component.
func NewTranslator(gateway *llm.Gateway, resolver *prompt.Resolver, component Component) *Translator {
	return &Translator{gateway: gateway, resolver: resolver, component: component}
}

// Translate returns the right-trimmed draft and tokens spent.
func (t *Translator) Translate(ctx context.Context, sample models.Sample, constraints models.ConstraintSet, state *models.State) (string, models.Usage, error) {
	vars := map[string]string{
		"text":        sample.SourceText,
		"context":     sample.Context,
		"state":       renderStateJSON(state),
		"constraints": renderConstraintsMarkdown(constraints),
	}

	output, usage, err := call(ctx, t.gateway, t.resolver, t.component, vars, translatorSystemDefault)
	if err != nil {
		return "", models.Usage{}, err
	}
	return strings.TrimRight(output, " \t\n\r"), usage, nil
}
