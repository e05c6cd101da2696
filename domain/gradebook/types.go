package gradebook

import (
	"fmt"

	"github.com/volatiletech/null/v8"
)

// ResultSheet is the name of the computed sheet in a report workbook
const ResultSheet = "Result"

// ClassRef identifies a class on the remote gradebook
type ClassRef struct {
	Label string `json:"label" yaml:"label"`
	ID    int    `json:"id" yaml:"id"`
}

// SubjectLink is one entry returned by subject discovery
type SubjectLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SubjectRow is one student's line in a subject table.
// Cells holds the scraped row as-is; Scores and Average are the parsed values.
type SubjectRow struct {
	Student string         `json:"student"`
	Cells   []string       `json:"cells"`
	Scores  []null.Float64 `json:"scores"`
	Average null.Float64   `json:"average"`
}

// Subject is one course's grade table for a class and quarter
type Subject struct {
	Name   string       `json:"name"`
	Header []string     `json:"header"`
	Rows   []SubjectRow `json:"rows"`
}

// IsVoid reports whether the subject carries no student rows
func (s Subject) IsVoid() bool {
	return len(s.Rows) == 0
}

// Grade is the set of subjects fetched for one class-quarter.
// Subjects are sorted by name and that order is the column order of every report.
type Grade struct {
	Label    string    `json:"label"`
	Quarter  int       `json:"quarter"`
	Subjects []Subject `json:"subjects"`
}

// Title returns "<label>-<quarter>"
func (g Grade) Title() string {
	return fmt.Sprintf("%s-%d", g.Label, g.Quarter)
}

// FileName returns the default artifact file name for the grade
func (g Grade) FileName() string {
	return g.Title() + ".xlsx"
}

// SubjectNames returns subject names in grade order
func (g Grade) SubjectNames() []string {
	names := make([]string, len(g.Subjects))
	for i, s := range g.Subjects {
		names[i] = s.Name
	}
	return names
}

// StudentReport is the per-student result row of the report
type StudentReport struct {
	Index          int            `json:"index"`
	Name           string         `json:"name"`
	Scores         []null.Float64 `json:"scores"`
	OverallAverage float64        `json:"overall_average"`
	Category       Category       `json:"category"`
}
