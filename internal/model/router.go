// Package model routes completion and embedding requests to the provider
// that serves the requested model family.
package model

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/model/contract"
	anthropicProvider "github.com/standup-agent/standup/internal/model/providers/anthropic"
	geminiProvider "github.com/standup-agent/standup/internal/model/providers/gemini"
	openaiProvider "github.com/standup-agent/standup/internal/model/providers/openai"
)

// DefaultRouter picks a provider from the model name prefix. Providers are
// constructed lazily on first use so a missing API key only matters for the
// family actually requested.
type DefaultRouter struct {
	mu        sync.Mutex
	providers map[string]Provider
}

func NewRouter() *DefaultRouter {
	return &DefaultRouter{providers: make(map[string]Provider)}
}

// Route sends a completion request to the provider owning the model family.
func (r *DefaultRouter) Route(ctx context.Context, model string, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	if model == "" {
		return nil, serrors.InvalidInput("model name is required")
	}
	req.Model = model

	provider, err := r.providerFor(model)
	if err != nil {
		return nil, err
	}

	slog.Debug("Routing completion request", "model", model, "provider", provider.Name())

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return nil, serrors.Wrap(err, "completion via "+provider.Name())
	}
	return resp, nil
}

// RouteEmbedding sends an embedding request to the provider owning the
// embedding model family.
func (r *DefaultRouter) RouteEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	if model == "" {
		return nil, serrors.InvalidInput("embedding model name is required")
	}

	provider, err := r.providerFor(model)
	if err != nil {
		return nil, err
	}

	slog.Debug("Routing embedding request", "model", model, "provider", provider.Name())

	vec, err := provider.Embed(ctx, model, text)
	if err != nil {
		return nil, serrors.Wrap(err, "embedding via "+provider.Name())
	}
	return vec, nil
}

func (r *DefaultRouter) providerFor(model string) (Provider, error) {
	family := familyOf(model)
	if family == "" {
		return nil, serrors.NotFound("no provider for model " + model)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.providers[family]; ok {
		return p, nil
	}

	var (
		p   Provider
		err error
	)
	switch family {
	case "openai":
		p = openaiProvider.New("", "")
	case "anthropic":
		p = anthropicProvider.New("")
	case "gemini":
		p, err = geminiProvider.New("")
	}
	if err != nil {
		return nil, serrors.Wrap(err, "init provider "+family)
	}

	r.providers[family] = p
	return p, nil
}

func familyOf(model string) string {
	switch {
	case strings.HasPrefix(model, "gpt-"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "text-embedding-"):
		return "openai"
	case strings.HasPrefix(model, "claude-"):
		return "anthropic"
	case strings.HasPrefix(model, "gemini-"):
		return "gemini"
	default:
		return ""
	}
}
