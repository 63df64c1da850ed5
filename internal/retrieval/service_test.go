package retrieval

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/caesar-ai/caesar-go/internal/rag"
)

// stubRetriever returns a fixed document set.
type stubRetriever struct {
	docs []rag.Document
	err  error
}

func (r *stubRetriever) Retrieve(context.Context, string, int) ([]rag.Document, error) {
	return r.docs, r.err
}

// stubModel records whether it was called and returns a canned answer.
type stubModel struct {
	called bool
	reply  string
}

func (m *stubModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.called = true
	return schema.AssistantMessage(m.reply, nil), nil
}

// ── similarity ──

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		distance float32
		want     float64
	}{
		{0, 1.0},
		{1, 0.5},
		{3, 0.25},
		{-0.5, 1.0}, // negative distances clamp to zero
	}
	for _, tt := range tests {
		if got := Similarity(tt.distance); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Similarity(%v) = %v, want %v", tt.distance, got, tt.want)
		}
	}
}

func TestSimilarity_Monotonic(t *testing.T) {
	t.Parallel()

	prev := Similarity(0)
	for d := float32(0.1); d < 5; d += 0.3 {
		cur := Similarity(d)
		if cur >= prev {
			t.Fatalf("similarity not strictly decreasing at distance %v", d)
		}
		if cur <= 0 || cur > 1 {
			t.Fatalf("similarity %v out of (0,1] at distance %v", cur, d)
		}
		prev = cur
	}
}

// ── search ──

func TestSearch_SortsBySimilarity(t *testing.T) {
	t.Parallel()

	retriever := &stubRetriever{docs: []rag.Document{
		{ID: "far", Distance: 2.0},
		{ID: "near", Distance: 0.1},
		{ID: "mid", Distance: 0.8},
	}}
	svc, err := New(&Config{Retriever: retriever})
	if err != nil {
		t.Fatal(err)
	}

	results, err := svc.Search(context.Background(), "q")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if results[i].Document.ID != want {
			t.Errorf("result %d = %q, want %q", i, results[i].Document.ID, want)
		}
	}
}

// ── context assembly ──

func TestBuildContext_Budget(t *testing.T) {
	t.Parallel()

	svc, err := New(&Config{
		Retriever:       &stubRetriever{},
		MaxContextChars: 120,
	})
	if err != nil {
		t.Fatal(err)
	}

	results := []Result{
		{Document: rag.Document{Source: "a.pdf", ChunkIndex: 0, Content: strings.Repeat("x", 50)}},
		{Document: rag.Document{Source: "b.pdf", ChunkIndex: 1, Content: strings.Repeat("y", 50)}},
		{Document: rag.Document{Source: "c.pdf", ChunkIndex: 2, Content: strings.Repeat("z", 50)}},
	}

	got := svc.BuildContext(results)
	if len(got) > 120 {
		t.Errorf("context length %d exceeds budget 120", len(got))
	}
	if !strings.Contains(got, "a.pdf") {
		t.Errorf("first block missing: %q", got)
	}
	// Blocks are dropped whole, never cut mid-block.
	if strings.Contains(got, "y") && !strings.Contains(got, strings.Repeat("y", 50)) {
		t.Errorf("block was truncated mid-content: %q", got)
	}
}

func TestBuildContext_Format(t *testing.T) {
	t.Parallel()

	svc, err := New(&Config{Retriever: &stubRetriever{}})
	if err != nil {
		t.Fatal(err)
	}

	results := []Result{
		{Document: rag.Document{Source: "notes.docx", ChunkIndex: 3, Content: "first"}},
		{Document: rag.Document{Source: "report.pdf", ChunkIndex: 0, Content: "second"}},
	}

	got := svc.BuildContext(results)
	want := "[source: notes.docx / chunk: 3]\nfirst\n\n---\n\n[source: report.pdf / chunk: 0]\nsecond"
	if got != want {
		t.Errorf("context:\ngot  %q\nwant %q", got, want)
	}
}

// ── answer ──

func TestAnswer_NoResultsSkipsModel(t *testing.T) {
	t.Parallel()

	model := &stubModel{reply: "should not appear"}
	svc, err := New(&Config{
		Retriever: &stubRetriever{docs: nil},
		Model:     model,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Answer(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}
	if got != NoResultsMessage {
		t.Errorf("got %q, want fixed no-results message", got)
	}
	if model.called {
		t.Error("model must not be invoked when retrieval is empty")
	}
}

func TestAnswer_AppendsDeduplicatedSources(t *testing.T) {
	t.Parallel()

	retriever := &stubRetriever{docs: []rag.Document{
		{ID: "a-0", Source: "a.pdf", Content: "alpha", Distance: 0.1},
		{ID: "a-1", Source: "a.pdf", Content: "beta", Distance: 0.2},
		{ID: "b-0", Source: "b.xlsx", Content: "gamma", Distance: 0.3},
	}}
	model := &stubModel{reply: "The answer."}
	svc, err := New(&Config{Retriever: retriever, Model: model})
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Answer(context.Background(), "q")
	if err != nil {
		t.Fatalf("Answer failed: %v", err)
	}

	if !strings.HasPrefix(got, "The answer.") {
		t.Errorf("answer body missing: %q", got)
	}
	if strings.Count(got, "a.pdf") != 1 {
		t.Errorf("duplicate source not deduplicated: %q", got)
	}
	if !strings.Contains(got, "Sources:") || !strings.Contains(got, "- b.xlsx") {
		t.Errorf("sources list malformed: %q", got)
	}
	if !model.called {
		t.Error("model should be invoked when results exist")
	}
}

// ── healthcheck ──

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	svc, err := New(&Config{Retriever: &stubRetriever{}})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Healthcheck(context.Background()); err != nil {
		t.Errorf("healthcheck should pass with a working retriever: %v", err)
	}
}
