package rag

import (
	"context"
	"fmt"
	"testing"
)

// newMemStore returns an in-memory ChromemStore for tests.
func newMemStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemMemoryStore("test-docs")
	if err != nil {
		t.Fatalf("NewChromemMemoryStore() failed: %v", err)
	}
	return store
}

// docsFor builds n documents and matching unit-vector embeddings for source.
// Each document gets a distinct axis-aligned embedding so similarity
// ordering is deterministic.
func docsFor(source string, n, dims int) ([]Document, [][]float32) {
	docs := make([]Document, n)
	embs := make([][]float32, n)
	for i := range docs {
		docs[i] = Document{
			ID:         fmt.Sprintf("%s-%d", source, i),
			Content:    fmt.Sprintf("chunk %d of %s", i, source),
			Source:     source,
			ChunkIndex: i,
		}
		v := make([]float32, dims)
		v[i%dims] = 1
		embs[i] = v
	}
	return docs, embs
}

// ── upsert semantics ──────────────────────────────────────────────────────

func TestUpsertSource_ReplacesPreviousChunks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docs, embs := docsFor("report.pdf", 3, 4)
	if err := store.UpsertSource(ctx, "report.pdf", docs, embs); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Re-ingesting the same source with fewer chunks must replace, not append.
	docs2, embs2 := docsFor("report.pdf", 2, 4)
	if err := store.UpsertSource(ctx, "report.pdf", docs2, embs2); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 chunks after re-ingest, got %d", count)
	}
}

func TestUpsertSource_LeavesOtherSourcesIntact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docsA, embsA := docsFor("a.pdf", 2, 4)
	docsB, embsB := docsFor("b.docx", 3, 4)
	if err := store.UpsertSource(ctx, "a.pdf", docsA, embsA); err != nil {
		t.Fatalf("upsert a.pdf failed: %v", err)
	}
	if err := store.UpsertSource(ctx, "b.docx", docsB, embsB); err != nil {
		t.Fatalf("upsert b.docx failed: %v", err)
	}

	docsA2, embsA2 := docsFor("a.pdf", 1, 4)
	if err := store.UpsertSource(ctx, "a.pdf", docsA2, embsA2); err != nil {
		t.Fatalf("re-upsert a.pdf failed: %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 4 {
		t.Errorf("expected 4 chunks (1 + 3), got %d", count)
	}
}

func TestUpsertSource_MismatchedLengths(t *testing.T) {
	t.Parallel()
	store := newMemStore(t)

	docs, embs := docsFor("x.pdf", 2, 4)
	err := store.UpsertSource(context.Background(), "x.pdf", docs, embs[:1])
	if err == nil {
		t.Fatal("expected error for mismatched docs/embeddings lengths")
	}
}

// ── search ────────────────────────────────────────────────────────────────

func TestSearch_EmptyCollection(t *testing.T) {
	t.Parallel()
	store := newMemStore(t)

	docs, err := store.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search() on empty collection failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no results, got %d", len(docs))
	}
}

func TestSearch_TopKClampedToCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docs, embs := docsFor("a.pdf", 2, 4)
	if err := store.UpsertSource(ctx, "a.pdf", docs, embs); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := store.Search(ctx, []float32{1, 0, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results (clamped to count), got %d", len(got))
	}
}

func TestSearch_RanksByDistance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docs := []Document{
		{ID: "match-0", Content: "aligned", Source: "a.pdf", ChunkIndex: 0},
		{ID: "other-0", Content: "orthogonal", Source: "b.pdf", ChunkIndex: 0},
	}
	embs := [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}
	if err := store.UpsertSource(ctx, "mixed", docs, embs); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err := store.Search(ctx, []float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].ID != "match-0" {
		t.Errorf("expected the aligned vector first, got %q", got[0].ID)
	}
	if got[0].Distance >= got[1].Distance {
		t.Errorf("expected increasing distance order, got %v then %v",
			got[0].Distance, got[1].Distance)
	}
	if got[0].Distance < 0 {
		t.Errorf("distance must be non-negative, got %v", got[0].Distance)
	}
}

// ── clear and delete ──────────────────────────────────────────────────────

func TestClear_EmptiesCollection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docs, embs := docsFor("a.pdf", 3, 4)
	if err := store.UpsertSource(ctx, "a.pdf", docs, embs); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty collection after Clear, got %d", count)
	}

	// The store must remain usable after a clear.
	if err := store.UpsertSource(ctx, "a.pdf", docs, embs); err != nil {
		t.Fatalf("upsert after Clear failed: %v", err)
	}
}

func TestDeleteSource_OnlyRemovesMatching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore(t)

	docsA, embsA := docsFor("a.pdf", 2, 4)
	docsB, embsB := docsFor("b.pdf", 2, 4)
	_ = store.UpsertSource(ctx, "a.pdf", docsA, embsA)
	_ = store.UpsertSource(ctx, "b.pdf", docsB, embsB)

	if err := store.DeleteSource(ctx, "a.pdf"); err != nil {
		t.Fatalf("DeleteSource() failed: %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 2 {
		t.Errorf("expected 2 remaining chunks, got %d", count)
	}
}

func TestPersistentFlag(t *testing.T) {
	t.Parallel()

	mem := newMemStore(t)
	if mem.Persistent() {
		t.Error("in-memory store must report Persistent() == false")
	}

	disk, err := NewChromemStore(t.TempDir(), "test-docs")
	if err != nil {
		t.Fatalf("NewChromemStore() failed: %v", err)
	}
	if !disk.Persistent() {
		t.Error("on-disk store must report Persistent() == true")
	}
}
