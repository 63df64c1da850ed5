package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/agent"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/provider"
	"github.com/caesar-ai/caesar-go/internal/store"
)

// NewChatCmd constructs the `caesar chat` command, an interactive REPL with
// persistent conversation history.
func NewChatCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive terminal session with the Caesar agent. Each
session gets a conversation ID and its turns are persisted to the local
history database, so context carries across messages. Pass --conversation
to resume an earlier session.

Type 'exit' or press Ctrl-D to leave.

Examples:
  caesar chat
  caesar chat --conversation 6f1c2f0a-8df1-4e6e-9c40-2f8e7a9c1b11`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("chat: failed to initialise model provider: %w", err)
			}

			rs, err := buildRetrievalStack(ctx, log, chatModel)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
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
				return fmt.Errorf("chat: failed to initialise agent: %w", err)
			}

			if conversationID == "" {
				conversationID = uuid.NewString()
			}
			fmt.Printf("Caesar ready. Conversation %s. Type 'exit' to quit.\n", conversationID)

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for {
				fmt.Print("you> ")
				if !scanner.Scan() {
					fmt.Println()
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				fmt.Print("caesar> ")
				if _, err := caesarAgent.Query(ctx, conversationID, line, os.Stdout); err != nil {
					fmt.Fprintf(os.Stderr, "\nerror: %v\n", err)
					continue
				}
				fmt.Println()
			}
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation ID to resume (default: new session)")

	return cmd
}

// openHistory opens the conversation history store, honouring
// CAESAR_HISTORY_DB. A failure disables history rather than blocking
// the session.
func openHistory(log *slog.Logger) store.ConversationStore {
	dbPath := os.Getenv("CAESAR_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via CAESAR_HISTORY_DB=disabled")
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil
		}
	}
	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil
	}
	log.Info("history: store opened", slog.String("path", dbPath))
	return hs
}
