package ingestion

import "testing"

func TestInferMetadata(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want InferredMetadata
	}{
		// ── doc types ──
		{
			name: "pdf is a report",
			path: "/data/finance/q3-results.pdf",
			want: InferredMetadata{DocType: "report", Category: "finance"},
		},
		{
			name: "xlsx is a spreadsheet",
			path: "/data/finance/budget.xlsx",
			want: InferredMetadata{DocType: "spreadsheet", Category: "finance"},
		},
		{
			name: "docx is a document",
			path: "/data/hr/handbook.docx",
			want: InferredMetadata{DocType: "document", Category: "hr"},
		},
		{
			name: "unknown extension defaults to document",
			path: "/data/misc/notes.txt",
			want: InferredMetadata{DocType: "document", Category: "misc"},
		},

		// ── categories ──
		{
			name: "uppercase directory is lowercased",
			path: "/data/Legal/contract.pdf",
			want: InferredMetadata{DocType: "report", Category: "legal"},
		},
		{
			name: "relative path without directory",
			path: "report.pdf",
			want: InferredMetadata{DocType: "report", Category: ""},
		},
		{
			name: "file at filesystem root",
			path: "/report.pdf",
			want: InferredMetadata{DocType: "report", Category: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := InferMetadata(tt.path)
			if got != tt.want {
				t.Errorf("InferMetadata(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}
