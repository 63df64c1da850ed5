package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
)

// ChromemStore is a VectorStore backed by chromem-go, an embedded pure-Go
// vector database. With a path it persists to disk; without one it keeps
// everything in memory, which is used as the visible fallback when the
// persistent directory cannot be opened.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	persistent bool
}

// NewChromemStore opens (or creates) a persistent chromem database at
// path and returns a store bound to the named collection. Errors are
// returned to the caller; deciding whether to fall back to an in-memory
// store is deliberately left to the call site so the degradation is
// visible in logs.
func NewChromemStore(path, collection string) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("chromem store: open %s: %w", path, err)
	}
	return newChromemStore(db, collection, true)
}

// NewChromemMemoryStore returns a store that lives entirely in memory.
// All data is lost when the process exits.
func NewChromemMemoryStore(collection string) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), collection, false)
}

func newChromemStore(db *chromem.DB, collection string, persistent bool) (*ChromemStore, error) {
	// The embedding func is nil because every call path supplies
	// pre-computed vectors; chromem never needs to embed on its own.
	col, err := db.GetOrCreateCollection(collection, chromemCollectionMetadata(), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem store: collection %s: %w", collection, err)
	}
	return &ChromemStore{db: db, collection: col, name: collection, persistent: persistent}, nil
}

// chromemCollectionMetadata selects cosine distance for the collection.
func chromemCollectionMetadata() map[string]string {
	return map[string]string{"hnsw:space": "cosine"}
}

// Persistent reports whether the store writes to disk.
func (s *ChromemStore) Persistent() bool { return s.persistent }

// UpsertSource replaces all chunks stored for source with docs.
func (s *ChromemStore) UpsertSource(ctx context.Context, source string, docs []Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("chromem store: %d docs but %d embeddings", len(docs), len(embeddings))
	}

	if err := s.DeleteSource(ctx, source); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	metadatas := make([]map[string]string, len(docs))
	contents := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
		contents[i] = doc.Content
		md := map[string]string{
			"source":    doc.Source,
			"chunk_idx": strconv.Itoa(doc.ChunkIndex),
		}
		for k, v := range doc.Metadata {
			md[k] = v
		}
		metadatas[i] = md
	}

	if err := s.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("chromem store: add %d chunks for %s: %w", len(docs), source, err)
	}
	return nil
}

// DeleteSource removes every chunk whose metadata source matches.
func (s *ChromemStore) DeleteSource(ctx context.Context, source string) error {
	if s.collection.Count() == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, map[string]string{"source": source}, nil); err != nil {
		return fmt.Errorf("chromem store: delete source %s: %w", source, err)
	}
	return nil
}

// Search returns the topK nearest documents. chromem rejects queries that
// request more results than stored documents, so topK is clamped and an
// empty collection short-circuits to an empty result.
func (s *ChromemStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Document, error) {
	count := s.collection.Count()
	if count == 0 || topK <= 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem store: query: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, res := range results {
		doc := Document{
			ID:      res.ID,
			Content: res.Content,
			// chromem reports cosine similarity; convert to a distance so
			// callers see the same scale as other backends.
			Distance: 1 - res.Similarity,
		}
		if src, ok := res.Metadata["source"]; ok {
			doc.Source = src
		}
		if idx, ok := res.Metadata["chunk_idx"]; ok {
			if n, err := strconv.Atoi(idx); err == nil {
				doc.ChunkIndex = n
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Clear drops and recreates the collection.
func (s *ChromemStore) Clear(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("chromem store: clear: %w", err)
	}
	col, err := s.db.GetOrCreateCollection(s.name, chromemCollectionMetadata(), nil)
	if err != nil {
		return fmt.Errorf("chromem store: recreate collection: %w", err)
	}
	s.collection = col
	return nil
}

// Count returns the number of stored chunks.
func (s *ChromemStore) Count(_ context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Close releases the store. chromem holds no open handles between
// operations, so this is a no-op kept for interface symmetry.
func (s *ChromemStore) Close() error {
	return nil
}
