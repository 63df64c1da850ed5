// Package tracing wires Langfuse trace export into the eino callback
// chain so agent runs and tool calls are observable end to end.
package tracing

import (
	"os"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
)

// defaultHost is used when LANGFUSE_HOST is unset, matching a local
// Langfuse docker-compose deployment.
const defaultHost = "http://localhost:3000"

// Setup initialises the Langfuse callback handler when both
// LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY are set. The returned flush
// function must be called before process exit so buffered traces are
// delivered. When the keys are absent all return values are zero and
// tracing stays disabled.
func Setup() (callbacks.Handler, func(), bool) {
	publicKey := os.Getenv("LANGFUSE_PUBLIC_KEY")
	secretKey := os.Getenv("LANGFUSE_SECRET_KEY")
	if publicKey == "" || secretKey == "" {
		return nil, nil, false
	}

	host := os.Getenv("LANGFUSE_HOST")
	if host == "" {
		host = defaultHost
	}

	handler, flusher := langfuse.NewLangfuseHandler(&langfuse.Config{
		Host:      host,
		PublicKey: publicKey,
		SecretKey: secretKey,
	})

	return handler, flusher, true
}
