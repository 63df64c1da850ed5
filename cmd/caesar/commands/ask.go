package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/agent"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/provider"
)

// NewAskCmd constructs the `caesar ask` command, which sends a single natural
// language request to the agent and streams the response to stdout.
func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [request]",
		Short: "Send a one-shot request to the assistant",
		Long: `Ask the Caesar agent to answer a question or carry out an action against
your connected services. Tools are enabled per service when the matching
credential env var is set (SLACK_BOT_TOKEN, NOTION_API_KEY,
GOOGLE_OAUTH_TOKEN).

Examples:
  caesar ask "what's on my calendar this week?"
  caesar ask "post 'standup moved to 10am' in #team-updates"
  caesar ask "find the onboarding doc in Drive and share it with dana@example.com"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			rs, err := buildRetrievalStack(ctx, log, chatModel)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer rs.Close()

			registry := buildRegistry(ctx, log, rs)

			caesarAgent, err := agent.New(ctx, &agent.Config{
				ChatModel: chatModel,
				Registry:  registry,
				Retriever: rs.Retriever,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise agent: %w", err)
			}

			_, err = caesarAgent.Query(ctx, "", args[0], os.Stdout) //nolint:wrapcheck // CLI entry point, error goes directly to cobra
			fmt.Println()
			return err
		},
	}
}
