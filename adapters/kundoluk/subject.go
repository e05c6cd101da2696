package kundoluk

import (
	"context"
	"strconv"
	"strings"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"

	"github.com/PuerkitoBio/goquery"
)

const (
	subjectTableSelector = "table.elementFixed-striped"
	// inline badges rendered next to marks, not part of the cell value
	cellNoiseSelector = "span.uk-margin-xsmall-right"
)

// FetchSubject retrieves and parses one subject table. Transport, status and
// structure failures all come back as core.ErrSubjectFetch; nothing is retried.
func (c *Client) FetchSubject(ctx context.Context, link gradebook.SubjectLink) (gradebook.Subject, error) {
	doc, err := c.document(ctx, link.URL, nil)
	if err != nil {
		return gradebook.Subject{}, core.NewSubjectFetchError(link.Name, err)
	}

	header, rows, err := parseSubjectTable(doc)
	if err != nil {
		return gradebook.Subject{}, core.NewSubjectFetchError(link.Name, err)
	}

	return gradebook.Subject{Name: link.Name, Header: header, Rows: rows}, nil
}

func parseSubjectTable(doc *goquery.Document) ([]string, []gradebook.SubjectRow, error) {
	table := doc.Find(subjectTableSelector).First()
	if table.Length() == 0 {
		return nil, nil, gradebook.ErrTableShape
	}
	table.Find(cellNoiseSelector).Remove()

	grid, isHeader := expandGrid(table.Find("tr"))

	var header, body [][]string
	for i, line := range grid {
		if isHeader[i] {
			header = append(header, line)
		} else {
			body = append(body, line)
		}
	}
	return gradebook.ParseTable(header, body)
}

type spanCell struct {
	text string
	left int
}

// expandGrid lays table rows out on a rectangular grid, repeating cells that
// span several columns or rows. isHeader marks rows made only of th cells.
func expandGrid(rows *goquery.Selection) ([][]string, []bool) {
	var grid [][]string
	var isHeader []bool
	pending := make(map[int]spanCell)

	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}

		var line []string
		col := 0
		carry := func() {
			for {
				p, ok := pending[col]
				if !ok {
					return
				}
				line = append(line, p.text)
				if p.left--; p.left == 0 {
					delete(pending, col)
				} else {
					pending[col] = p
				}
				col++
			}
		}

		cells.Each(func(_ int, cell *goquery.Selection) {
			carry()
			text := cleanText(cell.Text())
			rowspan := spanAttr(cell, "rowspan")
			for k := 0; k < spanAttr(cell, "colspan"); k++ {
				line = append(line, text)
				if rowspan > 1 {
					pending[col] = spanCell{text: text, left: rowspan - 1}
				}
				col++
			}
		})
		carry()

		grid = append(grid, line)
		isHeader = append(isHeader, tr.ChildrenFiltered("td").Length() == 0)
	})

	return grid, isHeader
}

func spanAttr(cell *goquery.Selection, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell.AttrOr(name, "1")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
