package ai

import "context"

const disabledModelName = "disabled"

type disabledEmbedder struct{}

// NewDisabledEmbedder returns an embedder that refuses every request.
func NewDisabledEmbedder() IEmbedder {
	return disabledEmbedder{}
}

func (disabledEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, ErrUnavailable
}

func (disabledEmbedder) ModelName() string {
	return disabledModelName
}

func (disabledEmbedder) IsEnabled() bool {
	return false
}
