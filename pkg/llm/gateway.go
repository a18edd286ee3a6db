package llm

import (
	"context"

	"github.com/2nod/evalrunner/pkg/models"
)

// Gateway is the sole doorway to any model provider: it resolves a
// provider variant, consults the disk cache, admits the call through the
// rate limiter, and invokes the provider.
type Gateway struct {
	providers map[string]Provider
	cache     *DiskCache
	limiter   *RateLimiter
}

// NewGateway builds a Gateway over the given provider registry. cache and
// limiter may be nil, in which case caching/rate-limiting are skipped.
func NewGateway(providers map[string]Provider, cache *DiskCache, limiter *RateLimiter) *Gateway {
	return &Gateway{providers: providers, cache: cache, limiter: limiter}
}

// Execute resolves req.Provider, checks the cache, admits through the rate
// limiter on a miss, calls the provider, and writes the cache on success.
func (g *Gateway) Execute(ctx context.Context, req Request) (Response, error) {
	if g.cache != nil {
		if resp, ok := g.cache.Get(req); ok {
			return resp, nil
		}
	}

	provider, ok := g.providers[req.Provider]
	if !ok {
		return Response{}, &models.ConfigError{Err: unknownProviderError(req.Provider)}
	}

	if g.limiter != nil {
		cost := req.Options.MaxOutputTokens
		if err := g.limiter.Admit(ctx, cost); err != nil {
			return Response{}, err
		}
	}

	resp, err := provider.Execute(ctx, req)
	if err != nil {
		return Response{}, err
	}

	if g.cache != nil {
		_ = g.cache.Set(req, resp)
	}
	return resp, nil
}

type unknownProviderErr struct{ provider string }

func (e unknownProviderErr) Error() string { return "unknown llm provider: " + e.provider }

func unknownProviderError(provider string) error { return unknownProviderErr{provider: provider} }
