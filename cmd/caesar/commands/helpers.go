package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/caesar-ai/caesar-go/internal/connectors/google"
	"github.com/caesar-ai/caesar-go/internal/connectors/notion"
	"github.com/caesar-ai/caesar-go/internal/connectors/slack"
	"github.com/caesar-ai/caesar-go/internal/dispatch"
	"github.com/caesar-ai/caesar-go/internal/embedder"
	"github.com/caesar-ai/caesar-go/internal/loader"
	"github.com/caesar-ai/caesar-go/internal/rag"
	"github.com/caesar-ai/caesar-go/internal/retrieval"
)

// getEnvOrDefault returns the named env var, or fallback when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named env var, or fallback when
// unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvBool returns the boolean value of the named env var, or fallback
// when unset, empty, or not parseable.
func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// buildLoader constructs a document loader from the XLSX_* env vars.
// Hidden sheets are excluded unless XLSX_SKIP_HIDDEN_SHEETS=false.
func buildLoader() *loader.Loader {
	return loader.New(loader.Options{
		XLSXMaxRows:       getEnvInt("XLSX_MAX_ROWS_PER_SHEET", 0),
		XLSXMaxCols:       getEnvInt("XLSX_MAX_COLS_PER_SHEET", 0),
		XLSXIncludeHidden: !getEnvBool("XLSX_SKIP_HIDDEN_SHEETS", true),
	})
}

// buildStore constructs the vector store selected by VECTOR_STORE.
//
// The default backend is chromem, an embedded store persisted under
// VECTOR_STORE_PATH (default: ~/.caesar/vectors). When the persistent
// store cannot be opened the command keeps running on an in-memory
// store so a broken data directory never blocks a session, but the
// degradation is logged loudly because ingested data will not survive
// the process.
func buildStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, error) {
	backend := getEnvOrDefault("VECTOR_STORE", "chromem")
	collection := getEnvOrDefault("VECTOR_COLLECTION", "caesar-docs")

	switch backend {
	case "qdrant":
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
		vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded
		store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: collection,
			VectorSize: vectorSize,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     getEnvBool("QDRANT_TLS", false),
		})
		if err != nil {
			return nil, fmt.Errorf("vector store: failed to connect to Qdrant: %w", err)
		}
		log.Info("vector store: qdrant ready",
			slog.String("host", getEnvOrDefault("QDRANT_HOST", "localhost")),
			slog.String("collection", collection),
		)
		return store, nil

	case "chromem":
		path := os.Getenv("VECTOR_STORE_PATH")
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("vector store: resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".caesar", "vectors")
		}
		store, err := rag.NewChromemStore(path, collection)
		if err != nil {
			log.Warn("vector store: persistent store unavailable, falling back to in-memory store; ingested documents will be lost when the process exits",
				slog.String("path", path),
				slog.Any("error", err),
			)
			return rag.NewChromemMemoryStore(collection)
		}
		log.Info("vector store: chromem ready",
			slog.String("path", path),
			slog.String("collection", collection),
		)
		return store, nil

	default:
		return nil, fmt.Errorf("vector store: unknown backend %q (valid values: chromem, qdrant)", backend)
	}
}

// retrievalStack bundles the RAG components shared by ask, query, chat
// and serve. Close releases the underlying store.
type retrievalStack struct {
	Store     rag.VectorStore
	Retriever rag.Retriever
	Service   *retrieval.Service
}

func (s *retrievalStack) Close() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

// buildRetrievalStack wires embedder, store, retriever and the retrieval
// service. model may be nil for search-only use (answering then fails
// with a clear error).
func buildRetrievalStack(ctx context.Context, log *slog.Logger, model retrieval.ChatModel) (*retrievalStack, error) {
	emb, err := embedder.NewBatchedFromEnv()
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	store, err := buildStore(ctx, log)
	if err != nil {
		return nil, err
	}

	topK := getEnvInt("RETRIEVAL_TOP_K", retrieval.DefaultTopK)
	retriever, err := rag.NewRetriever(emb, store, topK)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("retriever: %w", err)
	}

	svc, err := retrieval.New(&retrieval.Config{
		Retriever:       retriever,
		Model:           model,
		TopK:            topK,
		MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", retrieval.DefaultMaxContextChars),
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	return &retrievalStack{Store: store, Retriever: retriever, Service: svc}, nil
}

// buildRegistry constructs the tool registry from whatever service
// credentials are present in the environment. Services without
// credentials are simply not registered; the agent still works with
// the remaining tools.
func buildRegistry(ctx context.Context, log *slog.Logger, rs *retrievalStack) *dispatch.Registry {
	r := dispatch.NewRegistry()

	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		dispatch.RegisterSlackTools(r, slack.New(token))
		log.Info("tools: slack enabled")
	} else {
		log.Info("tools: slack disabled", slog.String("reason", "SLACK_BOT_TOKEN not set"))
	}

	if key := os.Getenv("NOTION_API_KEY"); key != "" {
		dispatch.RegisterNotionTools(r, notion.New(key), os.Getenv("NOTION_DATABASE_ID"))
		log.Info("tools: notion enabled")
	} else {
		log.Info("tools: notion disabled", slog.String("reason", "NOTION_API_KEY not set"))
	}

	if token := os.Getenv("GOOGLE_OAUTH_TOKEN"); token != "" {
		ts := google.StaticTokenSource(token)

		if driveSvc, err := google.NewDriveService(ctx, ts); err != nil {
			log.Warn("tools: drive unavailable", slog.Any("error", err))
		} else {
			dispatch.RegisterDriveTools(r, google.NewDriveClient(driveSvc))
			log.Info("tools: google drive enabled")
		}

		if calSvc, err := google.NewCalendarService(ctx, ts); err != nil {
			log.Warn("tools: calendar unavailable", slog.Any("error", err))
		} else {
			calendarID := getEnvOrDefault("GOOGLE_CALENDAR_ID", google.DefaultCalendarID)
			dispatch.RegisterCalendarTools(r, google.NewCalendarClient(calSvc, calendarID), time.Now)
			log.Info("tools: google calendar enabled", slog.String("calendar", calendarID))
		}
	} else {
		log.Info("tools: google disabled", slog.String("reason", "GOOGLE_OAUTH_TOKEN not set"))
	}

	if rs != nil {
		dispatch.RegisterRAGTools(r, rs.Service)
		log.Info("tools: document search enabled")
	}

	return r
}
