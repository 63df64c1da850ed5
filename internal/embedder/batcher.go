package embedder

import (
	"context"
	"fmt"

	"github.com/caesar-ai/caesar-go/internal/rag"
)

// Per-request embedding budgets. These sit safely under the limits of the
// common hosted embedding APIs.
const (
	DefaultMaxTokensPerRequest = 280_000
	DefaultMaxItemsPerRequest  = 256
)

// PlanBatches greedily groups texts into batches that respect both the
// token and item budgets, preserving input order. A single text whose
// token count alone exceeds the budget is placed in a batch of its own
// and sent anyway; the provider decides whether to accept it.
func PlanBatches(texts []string, counter TokenCounter, maxTokens, maxItems int) [][]string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokensPerRequest
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItemsPerRequest
	}

	var batches [][]string
	var current []string
	currentTokens := 0

	for _, text := range texts {
		tokens := counter.Count(text)
		if len(current) > 0 && (currentTokens+tokens > maxTokens || len(current) >= maxItems) {
			batches = append(batches, current)
			current = nil
			currentTokens = 0
		}
		current = append(current, text)
		currentTokens += tokens
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// BatchingEmbedder wraps an Embedder and splits large inputs into multiple
// requests according to the configured budgets. Results are concatenated
// in input order, so callers see a single Embed call.
type BatchingEmbedder struct {
	inner     rag.Embedder
	counter   TokenCounter
	maxTokens int
	maxItems  int
}

// NewBatchingEmbedder constructs a BatchingEmbedder. Non-positive budgets
// select the defaults.
func NewBatchingEmbedder(inner rag.Embedder, counter TokenCounter, maxTokens, maxItems int) *BatchingEmbedder {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokensPerRequest
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItemsPerRequest
	}
	return &BatchingEmbedder{
		inner:     inner,
		counter:   counter,
		maxTokens: maxTokens,
		maxItems:  maxItems,
	}
}

// Embed converts texts into embeddings, transparently splitting the work
// into budget-sized requests. The returned slice is parallel to texts.
func (b *BatchingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for _, batch := range PlanBatches(texts, b.counter, b.maxTokens, b.maxItems) {
		vectors, err := b.inner.Embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder: batch returned %d embeddings for %d inputs", len(vectors), len(batch))
		}
		out = append(out, vectors...)
	}
	return out, nil
}
