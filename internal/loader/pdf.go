package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of every page joined by blank lines.
// Pages that contain only whitespace are skipped. The underlying parser
// panics on some malformed files, so extraction is guarded by a recover
// that converts the panic into an error.
func extractPDF(path string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader: parse pdf %s: %v", path, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("loader: parse pdf %s: %w", path, err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("loader: parse pdf %s page %d: %w", path, i, err)
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n\n"), nil
}
