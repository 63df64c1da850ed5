// Package commands defines all Cobra CLI commands for the caesar binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/caesar-ai/caesar-go/internal/audit"
	"github.com/caesar-ai/caesar-go/internal/config"
	"github.com/caesar-ai/caesar-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "caesar",
		Short: "Caesar — an LLM assistant for your documents and SaaS tools",
		Long: `Caesar is an AI assistant that routes natural language requests to your
everyday tools: Google Calendar and Drive, Slack, and Notion. It also
answers questions grounded in your own documents via a local ingestion
pipeline and vector search.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.caesar/config.yaml).
See 'caesar --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.caesar/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewChatCmd(),
		NewQueryCmd(),
		NewIngestCmd(),
		NewServeCmd(),
		NewDiagnoseCmd(),
		NewVersionCmd(),
	)

	return root
}
