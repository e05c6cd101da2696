package gradebook

import (
	"errors"
	"strings"
)

// ErrTableShape is returned when a subject table lacks the expected columns
var ErrTableShape = errors.New("unexpected subject table shape")

const (
	headerSeparator = " / "
	averageHeader   = "СР"
	minTableColumns = 3
)

var studentHeaders = []string{"ФИО", "УЧЕНИК"}

// ParseTable turns a subject table grid into rows. header holds one or more
// header rows (multi-level headers are flattened column-wise), body the data
// rows. The student column is the one headed "ФИО"/"Ученик", falling back to
// the second column; the average column is the one headed "СР", falling back
// to the second-to-last column. Columns between them are per-criterion scores.
func ParseTable(header [][]string, body [][]string) ([]string, []SubjectRow, error) {
	width := 0
	for _, row := range header {
		width = max(width, len(row))
	}
	for _, row := range body {
		width = max(width, len(row))
	}
	if width < minTableColumns {
		return nil, nil, ErrTableShape
	}

	flat := FlattenHeader(header, width)
	nameCol, avgCol := locateColumns(flat)
	if avgCol <= nameCol {
		return nil, nil, ErrTableShape
	}

	var rows []SubjectRow
	for _, raw := range body {
		cells := make([]string, width)
		for i := range cells {
			if i < len(raw) {
				cells[i] = strings.TrimSpace(raw[i])
			}
		}

		student := cells[nameCol]
		if student == "" {
			continue
		}

		row := SubjectRow{
			Student: student,
			Cells:   cells,
			Average: ParseScore(cells[avgCol]),
		}
		for col := nameCol + 1; col < avgCol; col++ {
			row.Scores = append(row.Scores, ParseScore(cells[col]))
		}
		rows = append(rows, row)
	}

	return flat, rows, nil
}

// FlattenHeader joins the distinct non-empty texts of every header level per column
func FlattenHeader(header [][]string, width int) []string {
	flat := make([]string, width)
	for col := 0; col < width; col++ {
		var parts []string
		for _, row := range header {
			if col >= len(row) {
				continue
			}
			text := strings.TrimSpace(row[col])
			if text == "" || (len(parts) > 0 && parts[len(parts)-1] == text) {
				continue
			}
			parts = append(parts, text)
		}
		flat[col] = strings.Join(parts, headerSeparator)
	}
	return flat
}

func locateColumns(flat []string) (nameCol, avgCol int) {
	nameCol, avgCol = -1, -1
	for col, title := range flat {
		for _, part := range strings.Split(title, headerSeparator) {
			upper := strings.ToUpper(part)
			if nameCol < 0 && containsAny(upper, studentHeaders) {
				nameCol = col
			}
			if upper == averageHeader {
				avgCol = col
			}
		}
	}
	if nameCol < 0 {
		nameCol = 1
	}
	if avgCol < 0 {
		avgCol = len(flat) - 2
	}
	return nameCol, avgCol
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
