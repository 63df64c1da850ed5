// Package retrieval turns vector search results into ranked, budgeted
// context and grounded answers. It owns the similarity scale, the context
// assembly rules, and the single LLM call made for a retrieval answer.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/caesar-ai/caesar-go/internal/rag"
)

// NoResultsMessage is returned verbatim when the store holds nothing
// relevant. The LLM is not called in that case.
const NoResultsMessage = "I couldn't find any relevant information in the ingested documents."

// Defaults for search and context assembly.
const (
	DefaultTopK            = 5
	DefaultMaxContextChars = 12_000
)

// blockSeparator joins context blocks in the assembled prompt context.
const blockSeparator = "\n\n---\n\n"

// answerSystemPrompt instructs the model to answer strictly from the
// retrieved context.
const answerSystemPrompt = `You are a document assistant. Answer the user's question using ONLY the
provided context excerpts. If the context does not contain the answer,
say so plainly instead of guessing. Keep answers concise and cite facts
from the excerpts rather than outside knowledge.`

// ChatModel is the minimal chat surface the service needs. Satisfied by
// every eino chat model and easy to fake in tests.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Result pairs a retrieved document with its similarity score.
type Result struct {
	// Document is the retrieved chunk.
	Document rag.Document

	// Similarity is 1/(1+distance), in (0, 1]. Higher is more relevant.
	Similarity float64
}

// Service performs retrieval, ranking, context assembly and answering.
type Service struct {
	retriever       rag.Retriever
	model           ChatModel
	topK            int
	maxContextChars int
}

// Config holds the dependencies and tunables for a Service.
type Config struct {
	// Retriever fetches nearest chunks for a query. Required.
	Retriever rag.Retriever
	// Model generates the final answer. May be nil for search-only use;
	// Answer then fails.
	Model ChatModel
	// TopK is the number of chunks fetched per query (default 5).
	TopK int
	// MaxContextChars caps the assembled context length (default 12000).
	MaxContextChars int
}

// New constructs a Service.
func New(cfg *Config) (*Service, error) {
	if cfg.Retriever == nil {
		return nil, fmt.Errorf("retrieval: retriever must not be nil")
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	maxChars := cfg.MaxContextChars
	if maxChars <= 0 {
		maxChars = DefaultMaxContextChars
	}
	return &Service{
		retriever:       cfg.Retriever,
		model:           cfg.Model,
		topK:            topK,
		maxContextChars: maxChars,
	}, nil
}

// Similarity converts a raw store distance into a score in (0, 1].
// Negative distances (possible with some backends' floating point) are
// clamped to zero so the score never exceeds 1.
func Similarity(distance float32) float64 {
	return 1 / (1 + math.Max(float64(distance), 0))
}

// Search retrieves the topK nearest chunks for the query and returns them
// scored and sorted by similarity, most relevant first.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	docs, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search: %w", err)
	}

	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		results = append(results, Result{
			Document:   doc,
			Similarity: Similarity(doc.Distance),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

// BuildContext renders results into the prompt context. Each block is
// headed by its source and chunk index; blocks are joined by a separator.
// A block that would push the total past the character budget is dropped
// whole, along with everything after it.
func (s *Service) BuildContext(results []Result) string {
	var sb strings.Builder
	for _, res := range results {
		block := fmt.Sprintf("[source: %s / chunk: %d]\n%s",
			res.Document.Source, res.Document.ChunkIndex, res.Document.Content)

		added := len(block)
		if sb.Len() > 0 {
			added += len(blockSeparator)
		}
		if sb.Len()+added > s.maxContextChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(blockSeparator)
		}
		sb.WriteString(block)
	}
	return sb.String()
}

// Answer runs the full retrieval flow for a question: search, assemble
// context, one LLM call, and a deduplicated source list appended to the
// answer. When nothing is retrieved the fixed NoResultsMessage is
// returned and the model is never invoked.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	results, err := s.Search(ctx, question)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoResultsMessage, nil
	}
	if s.model == nil {
		return "", fmt.Errorf("retrieval: no chat model configured")
	}

	contextText := s.BuildContext(results)
	messages := []*schema.Message{
		schema.SystemMessage(answerSystemPrompt),
		schema.SystemMessage("## Context\n\n" + contextText),
		schema.UserMessage(question),
	}

	reply, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("retrieval: answer generation: %w", err)
	}

	return reply.Content + formatSources(results), nil
}

// Healthcheck verifies the retrieval path end to end with a trivial query.
func (s *Service) Healthcheck(ctx context.Context) error {
	if _, err := s.retriever.Retrieve(ctx, "healthcheck", 1); err != nil {
		return fmt.Errorf("retrieval: healthcheck: %w", err)
	}
	return nil
}

// formatSources renders the deduplicated source list appended to answers,
// preserving relevance order.
func formatSources(results []Result) string {
	seen := make(map[string]bool)
	var sources []string
	for _, res := range results {
		src := res.Document.Source
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nSources:\n")
	for _, src := range sources {
		fmt.Fprintf(&sb, "- %s\n", src)
	}
	return strings.TrimRight(sb.String(), "\n")
}
