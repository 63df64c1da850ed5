package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/provider"
)

// NewQueryCmd constructs the `caesar query` command, which answers questions
// strictly from the ingested documents, without agent tools.
func NewQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query [question]",
		Short: "Answer a question from the ingested documents",
		Long: `Answer a natural language question using only the documents previously
loaded with 'caesar ingest'. The answer cites its sources; when nothing
relevant is stored the command says so instead of guessing.

With no argument, query starts an interactive loop reading one question
per line until EOF or 'exit'.

Examples:
  caesar query "what were the Q3 revenue numbers?"
  caesar query "summarise the onboarding checklist"
  caesar query`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("query: failed to initialise model provider: %w", err)
			}

			rs, err := buildRetrievalStack(ctx, log, chatModel)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			defer rs.Close()

			if len(args) == 1 {
				answer, err := rs.Service.Answer(ctx, args[0])
				if err != nil {
					return fmt.Errorf("query: %w", err)
				}
				fmt.Println(answer)
				return nil
			}

			// Interactive mode: one question per line.
			fmt.Println("Document query mode. Type 'exit' to quit.")
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for {
				fmt.Print("query> ")
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
				answer, err := rs.Service.Answer(ctx, line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Println(answer)
			}
		},
	}
}
