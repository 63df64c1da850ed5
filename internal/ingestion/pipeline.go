// Package ingestion implements the document ingestion pipeline.
// It loads office documents from disk, chunks their text, embeds each
// chunk, and upserts the results into the vector store keyed by source
// file. This pipeline is invoked by the `caesar ingest` CLI command.
package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/caesar-ai/caesar-go/internal/chunker"
	"github.com/caesar-ai/caesar-go/internal/loader"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/rag"
)

// defaultFileDelay spaces embedding calls between files so hosted
// embedding APIs are not hammered during bulk ingestion.
const defaultFileDelay = 500 * time.Millisecond

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to chunker.DefaultChunkSize if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between consecutive
	// chunks. Defaults to chunker.DefaultChunkOverlap if negative or zero.
	ChunkOverlap int

	// FileDelay is the pause between files during directory ingestion.
	// Defaults to 500ms if zero; set negative to disable.
	FileDelay time.Duration
}

// FileResult records the outcome of ingesting a single file.
type FileResult struct {
	// Path is the file that was processed.
	Path string
	// Chunks is the number of chunks stored for the file.
	Chunks int
	// Skipped is true when the file was not a supported document or held
	// no extractable text.
	Skipped bool
	// Err is the failure, if any. Failed files do not abort a run.
	Err error
}

// Summary aggregates the results of an ingestion run.
type Summary struct {
	// Ingested counts files whose chunks were stored.
	Ingested int
	// Skipped counts unsupported or empty files.
	Skipped int
	// Failed counts files that errored.
	Failed int
	// Results holds the per-file outcomes in processing order.
	Results []FileResult
}

// Pipeline orchestrates the load → chunk → embed → upsert flow.
type Pipeline struct {
	// loader extracts text from document files.
	loader *loader.Loader

	// chunker splits extracted text into overlapping chunks.
	chunker *chunker.Chunker

	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks keyed by source file.
	store rag.VectorStore

	// fileDelay is the pause between files during directory ingestion.
	fileDelay time.Duration
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(ld *loader.Loader, embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if ld == nil {
		return nil, fmt.Errorf("ingestion: loader must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	delay := cfg.FileDelay
	if delay == 0 {
		delay = defaultFileDelay
	}
	if delay < 0 {
		delay = 0
	}

	return &Pipeline{
		loader:    ld,
		chunker:   chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder:  embedder,
		store:     store,
		fileDelay: delay,
	}, nil
}

// IngestFile processes a single document: extract, chunk, embed, upsert.
// Re-ingesting the same path replaces its previous chunks in the store.
func (p *Pipeline) IngestFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	text, err := p.loader.Load(path)
	if err != nil {
		result.Err = err
		return result
	}
	if strings.TrimSpace(text) == "" {
		result.Skipped = true
		return result
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		result.Skipped = true
		return result
	}

	embeddings, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		result.Err = fmt.Errorf("ingestion: embedding failed for %s: %w", path, err)
		return result
	}

	source := filepath.Clean(path)
	stem := fileStem(path)
	meta := InferMetadata(path)

	docs := make([]rag.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, rag.Document{
			ID:         fmt.Sprintf("%s-%d", stem, i),
			Content:    chunk,
			Source:     source,
			ChunkIndex: i,
			Metadata: map[string]string{
				"doc_type": meta.DocType,
				"category": meta.Category,
			},
		})
	}

	if err := p.store.UpsertSource(ctx, source, docs, embeddings); err != nil {
		result.Err = fmt.Errorf("ingestion: upsert failed for %s: %w", path, err)
		return result
	}

	result.Chunks = len(chunks)
	return result
}

// IngestPath ingests a single file or every supported file under a
// directory. Per-file failures are logged and recorded but do not abort
// the run. Progress is reported via the optional callback.
func (p *Pipeline) IngestPath(ctx context.Context, path string, progress func(msg string)) (*Summary, error) {
	if progress == nil {
		progress = func(string) {}
	}
	log := logging.FromContext(ctx)

	files, err := collectFiles(path)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i, file := range files {
		if i > 0 && p.fileDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(p.fileDelay):
			}
		}

		progress(fmt.Sprintf("ingesting %s", file))
		result := p.IngestFile(ctx, file)
		summary.Results = append(summary.Results, result)

		switch {
		case result.Err != nil:
			summary.Failed++
			log.Warn("ingestion: file failed, continuing",
				slog.String("path", file),
				slog.Any("error", result.Err),
			)
			progress(fmt.Sprintf("failed %s: %v", file, result.Err))
		case result.Skipped:
			summary.Skipped++
			progress(fmt.Sprintf("skipped %s (no extractable text)", file))
		default:
			summary.Ingested++
			progress(fmt.Sprintf("ingested %d chunks from %s", result.Chunks, file))
		}
	}

	return summary, nil
}

// collectFiles resolves path into the ordered list of candidate files.
// A single file is returned as-is; a directory yields every supported
// file beneath it, sorted for deterministic runs.
func collectFiles(path string) ([]string, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("ingestion: resolve %s: %w", path, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("ingestion: stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() || !loader.IsSupported(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingestion: walk %s: %w", path, err)
	}

	sort.Strings(files)
	return files, nil
}

// fileStem returns the base file name without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
