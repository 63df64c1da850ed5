// Package rag defines the interfaces for retrieval-augmented generation
// components: vector storage, document retrieval, and embedding.
// Concrete implementations (chromem, Qdrant) satisfy these interfaces so
// the rest of the system never depends on a specific backend.
package rag

import (
	"context"
)

// Document represents a unit of retrieved or stored knowledge.
type Document struct {
	// ID is the unique identifier for this document chunk, formed as
	// "{file stem}-{chunk index}".
	ID string

	// Content is the raw text content of the chunk.
	Content string

	// Source is the origin file path of the document.
	Source string

	// ChunkIndex is the position of this chunk within its source document.
	ChunkIndex int

	// Metadata holds arbitrary additional key-value pairs.
	Metadata map[string]string

	// Distance is the raw distance reported by the store during search.
	// Lower means closer. Zero for documents that were not searched.
	Distance float32
}

// VectorStore is the interface for persisting and searching document embeddings.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// UpsertSource replaces all stored chunks for a source document.
	// Existing chunks with the same source are deleted first, then the
	// given docs are inserted, so re-ingesting a file never leaves stale
	// chunks behind. The embeddings slice is parallel to docs.
	UpsertSource(ctx context.Context, source string, docs []Document, embeddings [][]float32) error

	// DeleteSource removes every chunk stored for the given source.
	DeleteSource(ctx context.Context, source string) error

	// Search returns the topK documents nearest to the query embedding,
	// with Distance populated. An empty store yields an empty result, not
	// an error.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error)

	// Clear removes every document in the collection.
	Clear(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever is the high-level interface used to fetch relevant context
// for a given query. It combines embedding and vector search.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns the top-k most relevant documents for the given query.
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}
