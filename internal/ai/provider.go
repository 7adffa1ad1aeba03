package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErr "github.com/xxxsen/mlibrary/internal/pkg/errors"
)

// ErrUnavailable is returned by embedders that cannot serve requests,
// either because AI is switched off or because credentials are missing.
var ErrUnavailable = fmt.Errorf("ai embedding: %w", appErr.ErrUnavailable)

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string) ([]float32, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// ModelName identifies provider and model, e.g. "openai:text-embedding-3-small".
	ModelName() string
	IsEnabled() bool
}

type embedder struct {
	provider IEmbedProvider
	model    string
	timeout  time.Duration
}

// NewEmbedderWithTimeout bounds every provider call by timeout.
func NewEmbedderWithTimeout(p IEmbedProvider, model string, timeout time.Duration) IEmbedder {
	return &embedder{provider: p, model: model, timeout: timeout}
}

func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.provider.Embed(ctx, e.model, text)
}

func (e *embedder) ModelName() string {
	return e.provider.Name() + ":" + e.model
}

func (e *embedder) IsEnabled() bool {
	return true
}

type EmbedProviderFactory func(args interface{}) (IEmbedProvider, error)

var embedRegistry = map[string]EmbedProviderFactory{}

func RegisterEmbed(name string, factory EmbedProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	embedRegistry[key] = factory
}

func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := embedRegistry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}
