package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// ChatTimeout bounds a single /api/chat agent turn, including all tool
	// calls. Defaults to 5 minutes.
	ChatTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// querier is the interface handleChat calls to stream an agent response.
// *agent.Agent satisfies it; tests inject a fake.
type querier interface {
	// Query streams the agent response for userMessage to w and returns the
	// full buffered response. conversationID scopes persisted history.
	Query(ctx context.Context, conversationID, userMessage string, w io.Writer) (string, error)
}

// answerer is the interface handleQuery calls for a direct RAG answer.
// *retrieval.Service satisfies it.
type answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// Server is the HTTP server that exposes the Caesar agent and the document
// retrieval service.
type Server struct {
	// querier handles /api/chat; set to the agent in production, overridden
	// by a fake in tests.
	querier querier
	// answerer handles /api/query.
	answerer answerer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the server's Prometheus instruments.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// Message is the user's natural language request.
	Message string `json:"message"`
	// ConversationID scopes persisted multi-turn history. Optional; an empty
	// ID makes the turn stateless.
	ConversationID string `json:"conversationId,omitempty"`
}

// queryRequest is the JSON body for POST /api/query.
type queryRequest struct {
	// Question is answered from the ingested document collection only.
	Question string `json:"question"`
}

// queryResponse is the JSON response for POST /api/query.
type queryResponse struct {
	// Answer is the retrieval-grounded model response, including the
	// appended Sources list when documents matched.
	Answer string `json:"answer"`
}
