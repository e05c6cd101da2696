package excel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gokundoluk/domain/gradebook"
	"gokundoluk/ports"

	"github.com/xuri/excelize/v2"
)

// parked here while the workbook would otherwise have no sheets
const placeholderSheet = "~placeholder"

// numericCell matches the plain numbers a gradebook cell can hold
var numericCell = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)

// Workbook is an in-memory workbook backed by excelize. It implements
// ports.WorkbookPort.
type Workbook struct {
	file        *excelize.File
	config      Config
	placeholder string
}

var _ ports.WorkbookPort = (*Workbook)(nil)

func newWorkbook(file *excelize.File, config Config, placeholder string) *Workbook {
	return &Workbook{file: file, config: config, placeholder: placeholder}
}

// SheetNames returns the sheets in workbook order, without the placeholder
func (w *Workbook) SheetNames() []string {
	var names []string
	for _, name := range w.file.GetSheetList() {
		if name != w.placeholder {
			names = append(names, name)
		}
	}
	return names
}

// HasSheet reports whether a sheet exists
func (w *Workbook) HasSheet(name string) bool {
	idx, err := w.file.GetSheetIndex(gradebook.SheetName(name))
	return err == nil && idx != -1
}

// ReplaceSheet creates an empty sheet at index, dropping any sheet of the same name
func (w *Workbook) ReplaceSheet(name string, index int) error {
	name = gradebook.SheetName(name)
	if w.HasSheet(name) {
		if err := w.DeleteSheet(name); err != nil {
			return err
		}
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	if err := w.dropPlaceholder(); err != nil {
		return err
	}

	list := w.file.GetSheetList()
	if index >= 0 && index < len(list) && list[index] != name {
		if err := w.file.MoveSheet(name, list[index]); err != nil {
			return fmt.Errorf("failed to move sheet %q to position %d: %w", name, index, err)
		}
	}
	return nil
}

// DeleteSheet removes a sheet. A workbook keeps at least one sheet, so
// deleting the last one parks a placeholder until the next ReplaceSheet.
func (w *Workbook) DeleteSheet(name string) error {
	name = gradebook.SheetName(name)
	if !w.HasSheet(name) {
		return nil
	}
	if list := w.file.GetSheetList(); len(list) == 1 {
		if _, err := w.file.NewSheet(placeholderSheet); err != nil {
			return fmt.Errorf("failed to create placeholder sheet: %w", err)
		}
		w.placeholder = placeholderSheet
	}
	if err := w.file.DeleteSheet(name); err != nil {
		return fmt.Errorf("failed to delete sheet %q: %w", name, err)
	}
	return nil
}

func (w *Workbook) dropPlaceholder() error {
	if w.placeholder == "" {
		return nil
	}
	if len(w.file.GetSheetList()) < 2 {
		return nil
	}
	if idx, err := w.file.GetSheetIndex(w.placeholder); err == nil && idx != -1 {
		if err := w.file.DeleteSheet(w.placeholder); err != nil {
			return fmt.Errorf("failed to delete placeholder sheet: %w", err)
		}
	}
	w.placeholder = ""
	return nil
}

// SetCell writes one value; nil leaves the cell blank
func (w *Workbook) SetCell(sheet string, row, col int, value any) error {
	if value == nil {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return w.file.SetCellValue(gradebook.SheetName(sheet), cell, value)
}

// MergeCells merges the rectangle between two corners
func (w *Workbook) MergeCells(sheet string, fromRow, fromCol, toRow, toCol int) error {
	topLeft, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		return err
	}
	bottomRight, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		return err
	}
	return w.file.MergeCell(gradebook.SheetName(sheet), topLeft, bottomRight)
}

// AppendRow writes values below the last used row and returns its number.
// Plain decimal text is stored as a number; anything else stays text.
func (w *Workbook) AppendRow(sheet string, values []any) (int, error) {
	sheet = gradebook.SheetName(sheet)
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	row := len(rows) + 1

	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = cellValue(v)
	}

	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return 0, err
	}
	if err := w.file.SetSheetRow(sheet, start, &cells); err != nil {
		return 0, fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return row, nil
}

func cellValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	// leading zeros are identifiers, not numbers
	if !numericCell.MatchString(trimmed) || hasLeadingZero(trimmed) {
		return s
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return s
}

func hasLeadingZero(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0' && s[1] != '.'
}

// AddPieChart draws a pie chart with one series
func (w *Workbook) AddPieChart(sheet string, chart ports.PieChart) error {
	anchor, err := excelize.CoordinatesToCellName(chart.AnchorCol, chart.AnchorRow)
	if err != nil {
		return err
	}
	categories, err := rangeRef(chart.Categories)
	if err != nil {
		return err
	}
	values, err := rangeRef(chart.Values)
	if err != nil {
		return err
	}

	return w.file.AddChart(gradebook.SheetName(sheet), anchor, &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       chart.Title,
			Categories: categories,
			Values:     values,
		}},
		Title:     []excelize.RichTextRun{{Text: chart.Title}},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		Dimension: excelize.ChartDimension{Width: w.config.ChartWidth, Height: w.config.ChartHeight},
	})
}

func rangeRef(r ports.CellRange) (string, error) {
	from, err := excelize.CoordinatesToCellName(r.FromCol, r.FromRow, true)
	if err != nil {
		return "", err
	}
	to, err := excelize.CoordinatesToCellName(r.ToCol, r.ToRow, true)
	if err != nil {
		return "", err
	}
	sheet := strings.ReplaceAll(gradebook.SheetName(r.Sheet), "'", "''")
	return fmt.Sprintf("'%s'!%s:%s", sheet, from, to), nil
}

// SetProperties stamps document properties
func (w *Workbook) SetProperties(props ports.WorkbookProperties) error {
	return w.file.SetDocProps(&excelize.DocProperties{
		Title:      props.Title,
		Identifier: props.Identifier,
		Subject:    props.Subject,
		Creator:    "gokundoluk",
	})
}

// SaveAs writes the workbook to path with the first sheet active
func (w *Workbook) SaveAs(path string) error {
	if err := w.dropPlaceholder(); err != nil {
		return err
	}
	w.file.SetActiveSheet(0)
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	return nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.file.Close()
}
