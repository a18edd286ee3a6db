package pipeline

import (
	"context"
	"encoding/json"

	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/prompt"
)

// StateBuilder extracts the facts fed to the stateful translator. Without a
// configured gateway it falls back to deterministic heuristics; a JSON
// parse error on the LLM path also falls back to the heuristic and never
// fails the pipeline.
type StateBuilder struct {
	gateway  *llm.Gateway
	resolver *prompt.Resolver
	component *Component
}

// NewStateBuilder builds a StateBuilder. component may be nil, in which
// case Build always uses the heuristic.
func NewStateBuilder(gateway *llm.Gateway, resolver *prompt.Resolver, component *Component) *StateBuilder {
	return &StateBuilder{gateway: gateway, resolver: resolver, component: component}
}

func heuristicState(text, context string) models.State {
	utterance := text
	if len(utterance) > 120 {
		utterance = utterance[:120]
	}
	return models.State{
		Utterance:   utterance,
		Speaker:     "unknown",
		Addressee:   "unknown",
		Entities:    []models.Entity{},
		CoreMeaning: text,
		Implicature: context,
	}
}

// Build returns the extracted State plus any tokens spent building it.
func (b *StateBuilder) Build(ctx context.Context, sample models.Sample) (models.State, models.Usage, error) {
	heuristic := heuristicState(sample.SourceText, sample.Context)
	if b.component == nil || b.gateway == nil {
		return heuristic, models.Usage{}, nil
	}

	vars := map[string]string{
		"text":    sample.SourceText,
		"context": sample.Context,
	}
	comp := *b.component
	comp.Model.JSONMode = true

	output, usage, err := call(ctx, b.gateway, b.resolver, comp, vars, "You extract narrative facts from a source line and return strict JSON.")
	if err != nil {
		if isLLMError(err) {
			return heuristic, models.Usage{}, nil
		}
		return models.State{}, models.Usage{}, err
	}

	var parsed models.State
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		return heuristic, usage, nil
	}

	merged := heuristic
	if parsed.Utterance != "" {
		merged.Utterance = parsed.Utterance
	}
	if parsed.Speaker != "" {
		merged.Speaker = parsed.Speaker
	}
	if parsed.Addressee != "" {
		merged.Addressee = parsed.Addressee
	}
	if len(parsed.Entities) > 0 {
		merged.Entities = parsed.Entities
	}
	if parsed.CoreMeaning != "" {
		merged.CoreMeaning = parsed.CoreMeaning
	}
	if parsed.Implicature != "" {
		merged.Implicature = parsed.Implicature
	}
	return merged, usage, nil
}
