package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/embedder"
	"github.com/caesar-ai/caesar-go/internal/ingestion"
	"github.com/caesar-ai/caesar-go/internal/logging"
)

// NewIngestCmd constructs the `caesar ingest` command, which loads documents
// from a file or directory into the vector store.
func NewIngestCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest documents into the vector store",
		Long: `Load PDF, Word and Excel documents from a file or directory, chunk and
embed their text, and store the results in the vector store for retrieval.

Re-ingesting a file replaces its previous chunks, so running ingest twice
on the same path never duplicates content. Pass --clear to wipe the whole
store first (asks for confirmation).

Relevant environment variables:
  VECTOR_STORE         chromem (embedded, default) or qdrant
  VECTOR_STORE_PATH    Data directory for the embedded store (default: ~/.caesar/vectors)
  VECTOR_COLLECTION    Collection name (default: caesar-docs)
  MODEL_PROVIDER       Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  caesar ingest ./docs
  caesar ingest quarterly-report.pdf
  caesar ingest --clear ./docs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			path := args[0]

			if err := embedder.ValidateForRAG(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewBatchedFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}

			store, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = store.Close() }()

			if clear {
				count, err := store.Count(ctx)
				if err != nil {
					return fmt.Errorf("ingest: failed to count stored documents: %w", err)
				}
				fmt.Printf("This will delete all %d stored document chunks. Continue? [y/N]: ", count)
				if !confirm(os.Stdin) {
					fmt.Println("Aborted.")
					return nil
				}
				if err := store.Clear(ctx); err != nil {
					return fmt.Errorf("ingest: failed to clear store: %w", err)
				}
				fmt.Println("Store cleared.")
			}

			pipeline, err := ingestion.NewPipeline(buildLoader(), emb, store, &ingestion.Config{
				ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
				ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			summary, err := pipeline.IngestPath(ctx, path, func(msg string) {
				fmt.Println(msg)
			})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Printf("Done: %d ingested, %d skipped, %d failed.\n",
				summary.Ingested, summary.Skipped, summary.Failed)

			if summary.Failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", summary.Failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all stored documents before ingesting")

	return cmd
}

// confirm reads one line from r and reports whether it is an explicit yes.
// Anything else, including EOF, declines.
func confirm(r *os.File) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
