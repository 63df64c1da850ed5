// Package loader extracts plain text from office documents for ingestion.
// It supports PDF, Word (docx) and Excel (xlsx) files. The file format is
// determined from the content, not just the extension: a mislabeled .pdf
// that is really a ZIP-based office file is parsed by its true format.
package loader

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported document format.
type Format string

// Supported document formats. FormatUnknown means the file is skipped.
const (
	FormatPDF     Format = "pdf"
	FormatDocx    Format = "docx"
	FormatXLSX    Format = "xlsx"
	FormatUnknown Format = ""
)

// Options controls extraction behaviour. Zero values select defaults.
type Options struct {
	// XLSXMaxRows caps how many data rows of each sheet are extracted
	// (default 10000).
	XLSXMaxRows int
	// XLSXMaxCols caps how many columns of each row are extracted
	// (default 512).
	XLSXMaxCols int
	// XLSXIncludeHidden extracts worksheets marked hidden in the
	// workbook. Hidden sheets are skipped by default.
	XLSXIncludeHidden bool
}

// Default extraction caps for spreadsheet content.
const (
	defaultXLSXMaxRows = 10000
	defaultXLSXMaxCols = 512
)

// Loader extracts text from document files.
type Loader struct {
	opts Options
}

// New constructs a Loader with the given options.
func New(opts Options) *Loader {
	if opts.XLSXMaxRows <= 0 {
		opts.XLSXMaxRows = defaultXLSXMaxRows
	}
	if opts.XLSXMaxCols <= 0 {
		opts.XLSXMaxCols = defaultXLSXMaxCols
	}
	return &Loader{opts: opts}
}

// IsSupported reports whether the file extension is one the loader handles.
// Used by directory walks to decide which files to attempt.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".xlsx":
		return true
	}
	return false
}

// Load reads the file at path and returns its extracted plain text.
// Files of an unrecognised format return ("", nil) so callers can skip
// them. A recognised format that fails to parse returns an error naming
// the format and cause.
func (l *Loader) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("loader: read %s: %w", path, err)
	}
	return l.LoadBytes(path, data)
}

// LoadBytes extracts text from in-memory file content. The path is used
// only for format fallback and error messages.
func (l *Loader) LoadBytes(path string, data []byte) (string, error) {
	switch DetectFormat(path, data) {
	case FormatPDF:
		return extractPDF(path, data)
	case FormatDocx:
		return extractDocx(path, data)
	case FormatXLSX:
		return l.extractXLSX(path, data)
	default:
		return "", nil
	}
}

// DetectFormat determines the document format from content first and the
// file extension second. ZIP archives are identified by their entry names:
// a word/ prefix means docx, an xl/ prefix means xlsx, regardless of what
// the file is called.
func DetectFormat(path string, data []byte) Format {
	if f := sniffZip(data); f != FormatUnknown {
		return f
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return FormatPDF
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDocx
	case ".xlsx":
		return FormatXLSX
	}
	return FormatUnknown
}

// sniffZip inspects a ZIP archive's entry names to classify office formats.
// Returns FormatUnknown for non-ZIP data or ZIPs that are neither.
func sniffZip(data []byte) Format {
	if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatUnknown
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return FormatUnknown
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") {
			return FormatDocx
		}
		if strings.HasPrefix(f.Name, "xl/") {
			return FormatXLSX
		}
	}
	return FormatUnknown
}
