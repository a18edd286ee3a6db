package main

import (
	"fmt"
	"strings"

	"github.com/2nod/evalrunner/internal/config"
	"github.com/2nod/evalrunner/pkg/llm"
	"github.com/2nod/evalrunner/pkg/orchestrator"
	"github.com/2nod/evalrunner/pkg/pipeline"
	"github.com/2nod/evalrunner/pkg/prompt"
)

// buildGateway constructs the LLM gateway with every provider the
// document's components might select, backed by the configured disk
// cache and rate limiter.
func buildGateway(doc *config.Document) (*llm.Gateway, error) {
	providers := map[string]llm.Provider{
		"mock": llm.NewMockProvider(),
	}
	if doc.UsesOpenAI() {
		apiKey, err := config.OpenAIAPIKey()
		if err != nil {
			return nil, err
		}
		providers["openai"] = llm.NewOpenAIProvider(apiKey)
	}

	cache := llm.NewDiskCache(doc.CacheDir())
	limiter := llm.NewRateLimiter(doc.RunSettings.RPM, doc.RunSettings.TPM)
	return llm.NewGateway(providers, cache, limiter), nil
}

// buildComponents constructs the orchestrator's pipeline stages from the
// document's components block. Optional components left unset in the
// document fall back to their stage's heuristic path, except
// translatorWithState: when it is unset the default translator is used.
func buildComponents(doc *config.Document, gw *llm.Gateway) orchestrator.Components {
	resolver := prompt.NewResolver(doc.ArtifactPaths())

	comps := orchestrator.Components{
		Translator: pipeline.NewTranslator(gw, resolver, doc.Components.Translator),
		Verifier: pipeline.NewVerifier(gw, resolver, doc.Components.Verifier, doc.Defaults.HardChecks.Toggles(), doc.Defaults.HardChecks.MaxLength),
		Repairer: pipeline.NewRepairer(gw, resolver, doc.Components.Repairer),
		Judge:    pipeline.NewJudge(gw, resolver, doc.Components.Judge, doc.RunSettings.JudgeRuns),
	}
	if doc.Components.StateBuilder != nil {
		comps.StateBuilder = pipeline.NewStateBuilder(gw, resolver, doc.Components.StateBuilder)
	}
	if doc.Components.TranslatorWithState != nil {
		comps.TranslatorWithState = pipeline.NewTranslator(gw, resolver, *doc.Components.TranslatorWithState)
	}
	return comps
}

func parseConditions(csv string) ([]string, error) {
	if csv == "" {
		return []string{"A0", "A1", "A2", "A3"}, nil
	}
	var out []string
	for _, part := range strings.Split(csv, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			return nil, fmt.Errorf("empty condition in -conditions list")
		}
		out = append(out, trimmed)
	}
	return out, nil
}
