package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Fakes for handler tests
// ---------------------------------------------------------------------------

// fakeQuerier implements the querier interface for tests.
// It writes a fixed response to the writer and returns configurable values.
type fakeQuerier struct {
	// response is written verbatim to the writer on each Query call.
	response string
	// err is returned as the error value.
	err error
	// gotConversation records the conversation ID seen by the last call.
	gotConversation string
}

func (f *fakeQuerier) Query(_ context.Context, conversationID, _ string, w io.Writer) (string, error) {
	f.gotConversation = conversationID
	if f.err != nil {
		return "", f.err
	}
	_, _ = fmt.Fprint(w, f.response)
	return f.response, nil
}

// fakeAnswerer implements the answerer interface for tests.
type fakeAnswerer struct {
	answer string
	err    error
}

func (f *fakeAnswerer) Answer(_ context.Context, _ string) (string, error) {
	return f.answer, f.err
}

// newTestServer builds a minimal *Server for handler tests, backed by a
// fresh metrics registry so tests stay hermetic.
func newTestServer() *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		querier:  &fakeQuerier{},
		answerer: &fakeAnswerer{},
		cfg:      &Config{Port: 8080, ChatTimeout: 5 * time.Minute},
		log:      slog.Default(),
		metrics:  newServerMetrics(reg),
	}
}

func newChatTestServer(q querier) *Server {
	s := newTestServer()
	s.querier = q
	return s
}

// ---------------------------------------------------------------------------
// POST /api/chat — validation error paths (no agent needed)
// ---------------------------------------------------------------------------

func TestHandleChat_MissingMessage(t *testing.T) {
	t.Parallel()

	s := newChatTestServer(&fakeQuerier{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"conversationId":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := newChatTestServer(&fakeQuerier{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/chat — happy path (fake querier, SSE response)
// ---------------------------------------------------------------------------

// TestHandleChat_Success verifies that a valid request produces an SSE stream
// with a "done" event. httptest.ResponseRecorder implements http.Flusher so
// the handler's flusher check passes without a real connection.
func TestHandleChat_Success(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{response: "You have 3 events this week."}
	s := newChatTestServer(q)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"what is on my calendar?","conversationId":"c1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	body := w.Body.String()

	if !strings.Contains(body, "event: done") {
		t.Errorf("expected SSE done event in body, got: %s", body)
	}
	if !strings.Contains(body, "[DONE]") {
		t.Errorf("expected [DONE] sentinel in body, got: %s", body)
	}
	if q.gotConversation != "c1" {
		t.Errorf("conversation id not forwarded, got %q", q.gotConversation)
	}
}

// TestHandleChat_AgentError verifies that when the querier returns an error,
// the SSE stream includes an "error" event and the response is still 200
// (SSE errors are delivered in-band, not via HTTP status).
func TestHandleChat_AgentError(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{err: fmt.Errorf("LLM unavailable")}
	s := newChatTestServer(q)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	body := w.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("expected error event in body, got: %s", body)
	}
	if !strings.Contains(body, "LLM unavailable") {
		t.Errorf("expected error message in body, got: %s", body)
	}
}

// ---------------------------------------------------------------------------
// POST /api/query — direct retrieval answers
// ---------------------------------------------------------------------------

func TestHandleQuery_Success(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = &fakeAnswerer{answer: "Revenue grew 12%.\n\nSources:\n- report.pdf"}

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question":"how did revenue do?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleQuery(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Revenue grew 12%.") {
		t.Errorf("answer missing from body: %s", w.Body.String())
	}
}

func TestHandleQuery_MissingQuestion(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	s.handleQuery(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleQuery_AnswererError(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = &fakeAnswerer{err: fmt.Errorf("store down")}

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()

	s.handleQuery(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestHandleQuery_NotConfigured(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = nil

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question":"anything"}`))
	w := httptest.NewRecorder()

	s.handleQuery(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
