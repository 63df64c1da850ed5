// Command caesar is the entry point for the Caesar assistant.
// It provides a CLI interface (via Cobra) for document ingestion and
// one-shot questions, plus an HTTP server with a streaming chat API.
package main

import (
	"fmt"
	"os"

	"github.com/caesar-ai/caesar-go/cmd/caesar/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
