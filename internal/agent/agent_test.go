package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/caesar-ai/caesar-go/internal/rag"
)

func TestNew_RequiresChatModel(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &Config{})
	if err == nil || !strings.Contains(err.Error(), "ChatModel") {
		t.Errorf("expected ChatModel error, got %v", err)
	}
}

func TestBuildRAGContext(t *testing.T) {
	t.Parallel()

	docs := []rag.Document{
		{Source: "report.pdf", ChunkIndex: 0, Content: "Q3 revenue grew 12%."},
		{Source: "notes.docx", ChunkIndex: 3, Content: "Launch moved to May."},
	}
	got := buildRAGContext(docs)

	if !strings.Contains(got, "### Source 1: report.pdf (chunk 0)") {
		t.Errorf("missing first source header:\n%s", got)
	}
	if !strings.Contains(got, "### Source 2: notes.docx (chunk 3)") {
		t.Errorf("missing second source header:\n%s", got)
	}
	if !strings.Contains(got, "Q3 revenue grew 12%.") || !strings.Contains(got, "Launch moved to May.") {
		t.Errorf("missing document content:\n%s", got)
	}
}
