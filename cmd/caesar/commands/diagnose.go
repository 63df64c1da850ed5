package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/embedder"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/provider"
)

// diagnoseTimeout bounds each connectivity probe.
const diagnoseTimeout = 15 * time.Second

// NewDiagnoseCmd constructs the `caesar diagnose` command, which checks the
// configured provider, embedder, vector store and service credentials.
func NewDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Check model, embedder, store and service configuration",
		Long: `Run connectivity and configuration checks for every Caesar dependency:
the chat model provider, the embedding backend, the vector store, and
the presence of service credentials. Secrets are reported as set/unset,
never printed.

Exits non-zero when any check fails.

Examples:
  caesar diagnose
  MODEL_PROVIDER=openai caesar diagnose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			failed := 0
			report := func(name string, err error) {
				if err != nil {
					failed++
					fmt.Printf("FAIL  %-14s %v\n", name, err)
					return
				}
				fmt.Printf("ok    %s\n", name)
			}

			if loadedConfigPath != "" {
				fmt.Printf("ok    config         %s\n", loadedConfigPath)
			} else {
				fmt.Println("ok    config         (env vars only)")
			}

			report("provider", checkProvider(ctx))
			report("embedder", checkEmbedder(ctx, log))
			report("store", checkStore(ctx, log))

			for _, key := range []string{"SLACK_BOT_TOKEN", "NOTION_API_KEY", "GOOGLE_OAUTH_TOKEN"} {
				state := "unset (tools disabled)"
				if os.Getenv(key) != "" {
					state = "set"
				}
				fmt.Printf("info  %-18s %s\n", key, state)
			}

			if failed > 0 {
				return fmt.Errorf("diagnose: %d check(s) failed", failed)
			}
			fmt.Println("All checks passed.")
			return nil
		},
	}
}

// checkProvider builds the chat model and sends a short probe message.
func checkProvider(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, diagnoseTimeout)
	defer cancel()

	chatModel, err := provider.NewFromEnv(ctx)
	if err != nil {
		return err
	}
	_, err = chatModel.Generate(ctx, []*schema.Message{schema.UserMessage("ping")})
	return err
}

// checkEmbedder validates the embedding config and embeds a probe string.
func checkEmbedder(ctx context.Context, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, diagnoseTimeout)
	defer cancel()

	if err := embedder.ValidateForRAG(log); err != nil {
		return err
	}
	emb, err := embedder.NewBatchedFromEnv()
	if err != nil {
		return err
	}
	_, err = emb.Embed(ctx, []string{"ping"})
	return err
}

// checkStore opens the configured vector store and counts its documents.
func checkStore(ctx context.Context, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, diagnoseTimeout)
	defer cancel()

	store, err := buildStore(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("      store holds %d document chunks\n", count)
	return nil
}
