package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/mlibrary/internal/config"
)

// NewEmbedderFromConfig picks the embedder for the configured provider.
// "disabled" (or empty) yields an embedder whose IsEnabled is false.
func NewEmbedderFromConfig(cfg config.AIConfig) (IEmbedder, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" || name == config.AIProviderDisabled {
		return NewDisabledEmbedder(), nil
	}
	provider, err := NewEmbedProvider(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" && name == config.AIProviderLocal {
		model = localModel
	}
	return NewEmbedderWithTimeout(provider, model, time.Duration(cfg.Timeout)*time.Second), nil
}
