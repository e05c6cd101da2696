package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"
	"gokundoluk/internal/analysis"
	"gokundoluk/ports"

	"github.com/volatiletech/null/v8"
)

const (
	resultTitleSuffix = "результаты"
	chartTitle        = "Распределение категорий"

	titleRow     = 1
	headerRow    = 2
	firstDataRow = 3
)

var (
	resultHeadPrefix = []string{"№", "Ученики"}
	resultHeadSuffix = []string{"Средний балл по всем предметам", "Категория"}
	sideTableHeaders = []string{"Категория", "Кол-во", "Процент"}
	summaryHeaders   = []string{"Показатель", "Значение"}
	summaryRowLabels = []string{"Средний балл", "Медиана", "Стандартное отклонение", "Минимум", "Максимум", "Учеников с оценками"}
)

// BuildOptions carries per-run settings for one report build
type BuildOptions struct {
	RunID core.RunID
	// Open hands the committed workbook to the launcher
	Open bool
}

// BuildResult describes a committed report
type BuildResult struct {
	Path         string                `json:"path"`
	RunID        core.RunID            `json:"run_id"`
	Subjects     []string              `json:"subjects"`
	Students     int                   `json:"students"`
	Distribution analysis.Distribution `json:"distribution"`
	Summary      analysis.ClassSummary `json:"summary"`
	Duration     time.Duration         `json:"duration"`
}

// ReportBuilder writes a grade and its student reports into a workbook.
// The target file is replaced only when every step succeeds.
type ReportBuilder struct {
	store    ports.WorkbookStorePort
	locker   ports.ArtifactLockPort
	launcher ports.LauncherPort
	logger   *internal.Logger
}

// NewReportBuilder creates a report builder. launcher may be nil.
func NewReportBuilder(store ports.WorkbookStorePort, locker ports.ArtifactLockPort, launcher ports.LauncherPort, logger *internal.Logger) *ReportBuilder {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ReportBuilder{store: store, locker: locker, launcher: launcher, logger: logger}
}

// BuildReport refreshes the raw subject sheets and the Result sheet of the
// workbook at targetPath and commits it. A malformed run id
// (core.ErrInvalidInput) or a locked target (core.ErrLockedArtifact) fails
// before anything is touched; any later failure comes back as core.ErrBuild
// with the target left as it was.
func (b *ReportBuilder) BuildReport(ctx context.Context, grade gradebook.Grade, reports []gradebook.StudentReport, targetPath string, opts BuildOptions) (*BuildResult, error) {
	start := time.Now()
	if opts.RunID.IsEmpty() {
		opts.RunID = core.NewRunID()
	} else if _, err := core.ParseRunID(opts.RunID.String()); err != nil {
		return nil, err
	}
	logger := b.logger.With("run_id", opts.RunID.String())

	release, err := b.locker.Acquire(targetPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("Failed to release lock on %s: %v", targetPath, err)
		}
	}()

	distribution := analysis.Distribute(reports)
	summary := analysis.Summarize(reports)

	if err := b.write(ctx, grade, reports, distribution, summary, targetPath, opts.RunID); err != nil {
		logger.Error("Report %s not written: %v", targetPath, err)
		return nil, err
	}

	result := &BuildResult{
		Path:         targetPath,
		RunID:        opts.RunID,
		Subjects:     grade.SubjectNames(),
		Students:     len(reports),
		Distribution: distribution,
		Summary:      summary,
		Duration:     time.Since(start),
	}
	logger.Info("Report %s written: %d subjects, %d students in %s",
		targetPath, len(result.Subjects), result.Students, result.Duration.Round(time.Millisecond))

	if opts.Open && b.launcher != nil {
		if err := b.launcher.Open(targetPath); err != nil {
			logger.Warn("Could not open %s: %v", targetPath, err)
		}
	}
	return result, nil
}

func (b *ReportBuilder) write(ctx context.Context, grade gradebook.Grade, reports []gradebook.StudentReport,
	distribution analysis.Distribution, summary analysis.ClassSummary, targetPath string, runID core.RunID) error {

	wb, err := b.store.Open(targetPath)
	if err != nil {
		return core.NewBuildError("open workbook", err)
	}
	defer wb.Close()

	steps := []struct {
		name string
		run  func() error
	}{
		{"subject sheets", func() error { return writeSubjectSheets(wb, grade) }},
		{"result sheet", func() error { return writeResultSheet(wb, grade, reports) }},
		{"category table", func() error { return writeCategoryTable(wb, grade, distribution) }},
		{"summary block", func() error { return writeSummaryBlock(wb, grade, summary) }},
		{"properties", func() error {
			return wb.SetProperties(ports.WorkbookProperties{
				Title:      grade.Title() + " " + resultTitleSuffix,
				Identifier: runID.String(),
				Subject:    grade.Title(),
			})
		}},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return core.NewBuildError(step.name, err)
		}
		if err := step.run(); err != nil {
			return core.NewBuildError(step.name, err)
		}
	}

	return commit(wb, targetPath, runID)
}

// commit saves next to the target and renames over it
func commit(wb ports.WorkbookPort, targetPath string, runID core.RunID) error {
	tmp := tempPath(targetPath, runID)
	if err := wb.SaveAs(tmp); err != nil {
		_ = os.Remove(tmp)
		return core.NewBuildError("save", err)
	}
	if err := os.Rename(tmp, targetPath); err != nil {
		_ = os.Remove(tmp)
		return core.NewBuildError("commit", err)
	}
	return nil
}

func tempPath(targetPath string, runID core.RunID) string {
	dir, name := filepath.Split(targetPath)
	ext := filepath.Ext(name)
	tag := strings.ReplaceAll(runID.String(), "-", "")
	if len(tag) > 12 {
		tag = tag[len(tag)-12:]
	}
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp%s", strings.TrimSuffix(name, ext), tag, ext))
}

// writeSubjectSheets gives each subject its own raw sheet
func writeSubjectSheets(wb ports.WorkbookPort, grade gradebook.Grade) error {
	sheets := grade.SheetNames()
	for i, subject := range grade.Subjects {
		sheet := sheets[i]
		if err := wb.ReplaceSheet(sheet, -1); err != nil {
			return err
		}
		if len(subject.Header) > 0 {
			if _, err := wb.AppendRow(sheet, toRow(subject.Header)); err != nil {
				return err
			}
		}
		for _, row := range subject.Rows {
			if _, err := wb.AppendRow(sheet, toRow(row.Cells)); err != nil {
				return err
			}
		}
	}
	return nil
}

func toRow(cells []string) []any {
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// resultColumns are the 1-based positions of the Result sheet blocks
type resultColumns struct {
	average   int
	category  int
	sideTable int
	summary   int
}

func columnsFor(grade gradebook.Grade) resultColumns {
	avg := len(resultHeadPrefix) + len(grade.Subjects) + 1
	cat := avg + 1
	side := cat + 2
	return resultColumns{average: avg, category: cat, sideTable: side, summary: side + 4}
}

func writeResultSheet(wb ports.WorkbookPort, grade gradebook.Grade, reports []gradebook.StudentReport) error {
	sheet := gradebook.ResultSheet
	cols := columnsFor(grade)

	if err := wb.ReplaceSheet(sheet, 0); err != nil {
		return err
	}

	if err := wb.SetCell(sheet, titleRow, 1, grade.Title()+" "+resultTitleSuffix); err != nil {
		return err
	}
	if err := wb.MergeCells(sheet, titleRow, 1, titleRow, cols.category); err != nil {
		return err
	}

	headers := make([]string, 0, cols.category)
	headers = append(headers, resultHeadPrefix...)
	headers = append(headers, grade.SubjectNames()...)
	headers = append(headers, resultHeadSuffix...)
	for i, h := range headers {
		if err := wb.SetCell(sheet, headerRow, i+1, h); err != nil {
			return err
		}
	}

	for i, r := range reports {
		row := firstDataRow + i
		cells := []any{r.Index, r.Name}
		for _, s := range r.Scores {
			cells = append(cells, scoreValue(s))
		}
		cells = append(cells, analysis.RoundAverage(r.OverallAverage), r.Category.Label())
		for col, v := range cells {
			if err := wb.SetCell(sheet, row, col+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func scoreValue(s null.Float64) any {
	if !s.Valid {
		return nil
	}
	return s.Float64
}

func writeCategoryTable(wb ports.WorkbookPort, grade gradebook.Grade, distribution analysis.Distribution) error {
	sheet := gradebook.ResultSheet
	col := columnsFor(grade).sideTable

	for i, h := range sideTableHeaders {
		if err := wb.SetCell(sheet, headerRow, col+i, h); err != nil {
			return err
		}
	}
	for i, share := range distribution.Shares {
		row := firstDataRow + i
		for j, v := range []any{share.Label, share.Count, share.PercentText()} {
			if err := wb.SetCell(sheet, row, col+j, v); err != nil {
				return err
			}
		}
	}

	lastRow := firstDataRow + len(distribution.Shares) - 1
	return wb.AddPieChart(sheet, ports.PieChart{
		Title:      chartTitle,
		AnchorRow:  firstDataRow + len(distribution.Shares) + 1,
		AnchorCol:  col,
		Categories: ports.CellRange{Sheet: sheet, FromRow: firstDataRow, FromCol: col, ToRow: lastRow, ToCol: col},
		Values:     ports.CellRange{Sheet: sheet, FromRow: firstDataRow, FromCol: col + 1, ToRow: lastRow, ToCol: col + 1},
	})
}

func writeSummaryBlock(wb ports.WorkbookPort, grade gradebook.Grade, summary analysis.ClassSummary) error {
	sheet := gradebook.ResultSheet
	col := columnsFor(grade).summary

	for i, h := range summaryHeaders {
		if err := wb.SetCell(sheet, headerRow, col+i, h); err != nil {
			return err
		}
	}
	values := []any{
		analysis.RoundAverage(summary.Mean),
		analysis.RoundAverage(summary.Median),
		analysis.RoundAverage(summary.StdDev),
		analysis.RoundAverage(summary.Min),
		analysis.RoundAverage(summary.Max),
		summary.Students,
	}
	for i, label := range summaryRowLabels {
		row := firstDataRow + i
		if err := wb.SetCell(sheet, row, col, label); err != nil {
			return err
		}
		if err := wb.SetCell(sheet, row, col+1, values[i]); err != nil {
			return err
		}
	}
	return nil
}
