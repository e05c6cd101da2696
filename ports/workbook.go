package ports

import "gokundoluk/domain/gradebook"

// CellRange addresses a rectangular block of cells, 1-based and inclusive
type CellRange struct {
	Sheet   string
	FromRow int
	FromCol int
	ToRow   int
	ToCol   int
}

// PieChart describes a pie chart over a label column and a value column
type PieChart struct {
	Title      string
	AnchorRow  int
	AnchorCol  int
	Categories CellRange
	Values     CellRange
}

// WorkbookProperties are the document properties stamped on a committed report
type WorkbookProperties struct {
	Title      string
	Identifier string
	Subject    string
}

// WorkbookPort is an open, in-memory spreadsheet. Rows and columns are 1-based.
// Nothing reaches disk until SaveAs.
type WorkbookPort interface {
	SheetNames() []string
	HasSheet(name string) bool

	// ReplaceSheet creates an empty sheet called name at position index,
	// dropping any existing sheet with that name.
	ReplaceSheet(name string, index int) error
	DeleteSheet(name string) error

	SetCell(sheet string, row, col int, value any) error
	MergeCells(sheet string, fromRow, fromCol, toRow, toCol int) error
	AppendRow(sheet string, values []any) (int, error)
	AddPieChart(sheet string, chart PieChart) error
	SetProperties(props WorkbookProperties) error

	SaveAs(path string) error
	Close() error
}

// WorkbookStorePort opens the workbook at path, or a new empty one when the
// file does not exist yet
type WorkbookStorePort interface {
	Open(path string) (WorkbookPort, error)
}

// ArtifactLockPort grants exclusive access to an artifact path. The returned
// release func must be called on every exit path.
type ArtifactLockPort interface {
	Acquire(path string) (release func() error, err error)
}

// LauncherPort opens a committed artifact with the platform's default handler
type LauncherPort interface {
	Open(path string) error
}

// GradeArchivePort reads the raw subject sheets of a committed report back
// into a Grade
type GradeArchivePort interface {
	ReadGrade(path string) (gradebook.Grade, error)
}
