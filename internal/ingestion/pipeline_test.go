package ingestion

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/caesar-ai/caesar-go/internal/loader"
	"github.com/caesar-ai/caesar-go/internal/rag"
)

// seqEmbedder returns a distinct unit-ish vector per call, good enough
// for storage round-trips.
type seqEmbedder struct{ calls int }

func (e *seqEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, float32(i) * 0.01, 0.5}
	}
	return out, nil
}

// failingEmbedder always errors, to exercise the per-file failure path.
type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, fmt.Errorf("embedding backend unavailable")
}

// writeDocx creates a minimal Word file containing the given paragraphs.
func writeDocx(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		fmt.Fprintf(&body, "<w:p><w:r><w:t>%s</w:t></w:r></w:p>", p)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestPipeline(t *testing.T, embedder rag.Embedder) (*Pipeline, *rag.ChromemStore) {
	t.Helper()
	store, err := rag.NewChromemMemoryStore("test-docs")
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPipeline(loader.New(loader.Options{}), embedder, store, &Config{
		ChunkSize:    200,
		ChunkOverlap: 20,
		FileDelay:    -1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return p, store
}

func TestIngestFile_StoresChunks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.docx")
	writeDocx(t, path, "The first paragraph of the document.", "A second paragraph with more content.")

	p, store := newTestPipeline(t, &seqEmbedder{})

	result := p.IngestFile(context.Background(), path)
	if result.Err != nil {
		t.Fatalf("IngestFile failed: %v", result.Err)
	}
	if result.Skipped || result.Chunks == 0 {
		t.Fatalf("expected stored chunks, got %+v", result)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != result.Chunks {
		t.Errorf("store holds %d chunks, pipeline reported %d", count, result.Chunks)
	}
}

func TestIngestFile_ReingestReplacesChunks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.docx")
	writeDocx(t, path, "Stable content that does not change between runs.")

	p, store := newTestPipeline(t, &seqEmbedder{})
	ctx := context.Background()

	first := p.IngestFile(ctx, path)
	if first.Err != nil {
		t.Fatal(first.Err)
	}
	second := p.IngestFile(ctx, path)
	if second.Err != nil {
		t.Fatal(second.Err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != first.Chunks {
		t.Errorf("re-ingestion should replace chunks: store holds %d, want %d", count, first.Chunks)
	}
}

func TestIngestFile_UnsupportedIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "readme.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, _ := newTestPipeline(t, &seqEmbedder{})
	result := p.IngestFile(context.Background(), path)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if !result.Skipped {
		t.Errorf("unsupported file should be skipped, got %+v", result)
	}
}

func TestIngestPath_ContinuesPastFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocx(t, filepath.Join(dir, "good.docx"), "Readable content in a valid file.")
	// A corrupt docx: has the word/ marker so it is routed to the parser,
	// which then fails on the malformed XML.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/document.xml")
	w.Write([]byte("<broken"))
	zw.Close()
	if err := os.WriteFile(filepath.Join(dir, "bad.docx"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	p, _ := newTestPipeline(t, &seqEmbedder{})

	summary, err := p.IngestPath(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("IngestPath failed: %v", err)
	}
	if summary.Ingested != 1 {
		t.Errorf("Ingested = %d, want 1", summary.Ingested)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
}

func TestIngestPath_EmbedderFailureIsPerFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDocx(t, filepath.Join(dir, "a.docx"), "Some content here.")
	writeDocx(t, filepath.Join(dir, "b.docx"), "Other content there.")

	p, _ := newTestPipeline(t, failingEmbedder{})

	summary, err := p.IngestPath(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("IngestPath failed: %v", err)
	}
	if summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2 (one per file)", summary.Failed)
	}
}

func TestIngestPath_MissingPath(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, &seqEmbedder{})
	if _, err := p.IngestPath(context.Background(), "/nonexistent/dir", nil); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestFileStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/data/report.pdf", "report"},
		{"notes.docx", "notes"},
		{"/data/archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
	}
	for _, tt := range tests {
		if got := fileStem(tt.path); got != tt.want {
			t.Errorf("fileStem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
