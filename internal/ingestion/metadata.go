package ingestion

import (
	"path/filepath"
	"strings"
)

// InferredMetadata holds the document kind and category inferred from a
// file's path. It is best-effort labelling attached to every stored chunk
// so searches and audits can filter by origin.
type InferredMetadata struct {
	// DocType classifies the file kind (report, spreadsheet, document).
	DocType string
	// Category is the immediate parent directory name, lowercased. Teams
	// that organise documents by folder get a usable facet for free.
	Category string
}

// docTypeByExt maps file extensions to a coarse document kind.
var docTypeByExt = map[string]string{
	".pdf":  "report",
	".xlsx": "spreadsheet",
	".docx": "document",
}

// InferMetadata inspects a document path and returns best-effort metadata.
// Unknown extensions yield DocType "document"; files at a filesystem root
// yield an empty Category.
func InferMetadata(path string) InferredMetadata {
	m := InferredMetadata{DocType: "document"}

	ext := strings.ToLower(filepath.Ext(path))
	if dt, ok := docTypeByExt[ext]; ok {
		m.DocType = dt
	}

	dir := filepath.Base(filepath.Dir(filepath.Clean(path)))
	switch dir {
	case ".", "..", string(filepath.Separator):
		// No meaningful parent directory.
	default:
		m.Category = strings.ToLower(dir)
	}

	return m
}
