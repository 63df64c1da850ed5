package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/agent"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/provider"
	"github.com/caesar-ai/caesar-go/internal/rag"
	"github.com/caesar-ai/caesar-go/internal/server"
	"github.com/caesar-ai/caesar-go/internal/tracing"
)

// NewServeCmd constructs the `caesar serve` command, which starts the HTTP
// server exposing the streaming chat and retrieval APIs.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Caesar HTTP server",
		Long: `Start the Caesar HTTP server on localhost.

The server exposes a streaming chat endpoint (POST /api/chat, SSE), a
document question endpoint (POST /api/query), health and readiness
probes, and Prometheus metrics. Set CAESAR_API_TOKEN to require Bearer
authentication on the API endpoints.

Examples:
  caesar serve
  caesar serve --port 9090
  MODEL_PROVIDER=openai caesar serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}

			rs, err := buildRetrievalStack(ctx, log, chatModel)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer rs.Close()

			registry := buildRegistry(ctx, log, rs)

			historyStore := openHistory(log)
			if historyStore != nil {
				defer func() { _ = historyStore.Close() }()
			}

			caesarAgent, err := agent.New(ctx, &agent.Config{
				ChatModel: chatModel,
				Registry:  registry,
				Retriever: rs.Retriever,
				History:   historyStore,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to initialise agent: %w", err)
			}

			pingers := []server.Pinger{
				server.NewLLMPinger(chatModel, "llm"),
			}
			if qs, isQdrant := rs.Store.(*rag.QdrantStore); isQdrant {
				pingers = append(pingers, server.NewQdrantPinger(qs.Client()))
			} else {
				pingers = append(pingers, server.NewStorePinger(rs.Store))
			}

			srv, err := server.New(caesarAgent, rs.Service, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("CAESAR_API_TOKEN"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
