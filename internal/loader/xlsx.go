package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX returns the workbook content as text. Each sheet starts with
// a "### [Sheet] name" header followed by one line per row, cells joined
// by " | " with trailing empty cells removed. Sheets exceeding the row cap
// are cut off with a truncation marker.
func (l *Loader) extractXLSX(path string, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("loader: parse xlsx %s: %w", path, err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		if !l.opts.XLSXIncludeHidden {
			visible, err := f.GetSheetVisible(sheet)
			if err == nil && !visible {
				continue
			}
		}
		section, err := l.extractSheet(f, sheet)
		if err != nil {
			return "", fmt.Errorf("loader: parse xlsx %s sheet %q: %w", path, sheet, err)
		}
		sections = append(sections, section)
	}

	return strings.Join(sections, "\n\n"), nil
}

// extractSheet renders one worksheet using the streaming row iterator so
// large workbooks are not fully materialised.
func (l *Loader) extractSheet(f *excelize.File, sheet string) (string, error) {
	lines := []string{fmt.Sprintf("### [Sheet] %s", sheet)}

	rows, err := f.Rows(sheet)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		if count >= l.opts.XLSXMaxRows {
			lines = append(lines, fmt.Sprintf("...(truncated at %d rows)", l.opts.XLSXMaxRows))
			break
		}

		cells, err := rows.Columns()
		if err != nil {
			return "", err
		}
		if len(cells) > l.opts.XLSXMaxCols {
			cells = cells[:l.opts.XLSXMaxCols]
		}
		cells = trimTrailingEmpty(cells)
		if len(cells) == 0 {
			continue
		}
		// Only emitted data rows count against the cap. Blank rows
		// interspersed in a sheet do not reduce the extracted data.
		count++
		lines = append(lines, strings.Join(cells, " | "))
	}
	if err := rows.Error(); err != nil {
		return "", err
	}

	return strings.Join(lines, "\n"), nil
}

// trimTrailingEmpty removes empty cells from the end of a row.
func trimTrailingEmpty(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
