package ai

import (
	"context"
	"math"
	"sort"
	"strings"
)

const localModel = "bow"

// localEmbedProvider builds a term-frequency vector over the lower-cased,
// whitespace-tokenized text. Dimensions follow the sorted vocabulary so the
// same text always yields the same vector.
type localEmbedProvider struct{}

func (p *localEmbedProvider) Name() string {
	return "local"
}

func (p *localEmbedProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	return LocalVector(text), nil
}

func LocalVector(text string) []float32 {
	freq := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		freq[word]++
	}
	vocab := make([]string, 0, len(freq))
	for word := range freq {
		vocab = append(vocab, word)
	}
	sort.Strings(vocab)

	vec := make([]float32, len(vocab))
	var sum float64
	for i, word := range vocab {
		vec[i] = float32(freq[word])
		sum += float64(freq[word]) * float64(freq[word])
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

func createLocalEmbedFactory(args interface{}) (IEmbedProvider, error) {
	return &localEmbedProvider{}, nil
}

func init() {
	RegisterEmbed("local", createLocalEmbedFactory)
}
