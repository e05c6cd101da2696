package excel

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"

	"github.com/xuri/excelize/v2"
)

// GradeReader reads the raw subject sheets of a report workbook back into a Grade
type GradeReader struct {
	logger *internal.Logger
}

// NewGradeReader creates a grade reader
func NewGradeReader(logger *internal.Logger) *GradeReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &GradeReader{logger: logger}
}

// ParseFileName splits a "<label>-<quarter>.xlsx" file name
func ParseFileName(path string) (string, int, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	cut := strings.LastIndex(stem, "-")
	if cut <= 0 {
		return "", 0, core.NewInvalidInputError("path", fmt.Sprintf("%q is not named <class>-<quarter>", base))
	}
	quarter, err := strconv.Atoi(stem[cut+1:])
	if err != nil || quarter <= 0 {
		return "", 0, core.NewInvalidInputError("path", fmt.Sprintf("%q has no valid quarter", base))
	}
	return stem[:cut], quarter, nil
}

// ReadGrade loads every sheet except Result as a subject. Sheets that do not
// parse as a subject table, or that have no rows, are skipped.
func (r *GradeReader) ReadGrade(path string) (gradebook.Grade, error) {
	label, quarter, err := ParseFileName(path)
	if err != nil {
		return gradebook.Grade{}, err
	}

	start := time.Now()
	sheets, err := r.readSheets(path)
	if err != nil {
		return gradebook.Grade{}, err
	}
	r.logger.Debug("Workbook %s read in %.2fms (%d sheets)", path, float64(time.Since(start).Nanoseconds())/1e6, len(sheets))

	grade := gradebook.Grade{Label: label, Quarter: quarter}
	for _, sheet := range sheets {
		header, rows, err := gradebook.ParseTable(sheet.header(), sheet.body())
		if err != nil {
			r.logger.Warn("Skipping sheet %s: %v", sheet.Name, err)
			continue
		}
		subject := gradebook.Subject{Name: sheet.Name, Header: header, Rows: rows}
		if subject.IsVoid() {
			r.logger.Warn("Skipping sheet %s: no student rows", sheet.Name)
			continue
		}
		grade.Subjects = append(grade.Subjects, subject)
	}

	slices.SortStableFunc(grade.Subjects, func(a, b gradebook.Subject) int {
		return strings.Compare(a.Name, b.Name)
	})
	return grade, nil
}

func (r *GradeReader) readSheets(path string) ([]sheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheets []sheetData
	for _, name := range f.GetSheetList() {
		if name == gradebook.ResultSheet {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets = append(sheets, sheetData{Name: name, Rows: rows})
	}
	return sheets, nil
}
