package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx returns the document text of a Word file. Paragraphs become
// lines; table rows become their cell texts joined by " | ". Rows whose
// cells are all empty are skipped.
func extractDocx(path string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("loader: parse docx %s: %w", path, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("loader: parse docx %s: word/document.xml not found", path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("loader: parse docx %s: %w", path, err)
	}
	defer rc.Close()

	lines, err := walkDocxBody(xml.NewDecoder(rc))
	if err != nil {
		return "", fmt.Errorf("loader: parse docx %s: %w", path, err)
	}
	return strings.Join(lines, "\n"), nil
}

// walkDocxBody streams the document XML and collects one line per
// paragraph or table row, in document order.
func walkDocxBody(dec *xml.Decoder) ([]string, error) {
	var lines []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "tbl":
			rows, err := collectTableRows(dec)
			if err != nil {
				return nil, err
			}
			lines = append(lines, rows...)
		case "p":
			text, err := collectParagraph(dec)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) != "" {
				lines = append(lines, text)
			}
		}
	}
}

// collectParagraph consumes tokens until the enclosing paragraph element
// closes, concatenating the text runs inside it.
func collectParagraph(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// collectTableRows consumes a w:tbl element and returns one line per row
// with non-empty content, cells joined by " | ".
func collectTableRows(dec *xml.Decoder) ([]string, error) {
	var rows []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tr" {
				cells, err := collectRowCells(dec)
				if err != nil {
					return nil, err
				}
				if rowHasContent(cells) {
					rows = append(rows, strings.Join(cells, " | "))
				}
				continue // collectRowCells consumed the matching end tag
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return rows, nil
}

// collectRowCells consumes a w:tr element and returns its cell texts.
// Multiple paragraphs inside a cell are joined by a single space.
func collectRowCells(dec *xml.Decoder) ([]string, error) {
	var cells []string
	var cell strings.Builder
	depth := 1
	inCell := false
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "tc":
				inCell = true
				cell.Reset()
			case "t":
				inText = true
			case "p":
				if inCell && cell.Len() > 0 {
					cell.WriteByte(' ')
				}
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "tc":
				cells = append(cells, strings.TrimSpace(cell.String()))
				inCell = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inCell && inText {
				cell.Write(t)
			}
		}
	}
	return cells, nil
}

// rowHasContent reports whether any cell holds non-whitespace text.
func rowHasContent(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
