package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"
	"gokundoluk/internal/analysis"
	"gokundoluk/ports"
)

// GradeFetcher produces the grade of a class-quarter
type GradeFetcher interface {
	FetchGrade(ctx context.Context, class gradebook.ClassRef, quarter int) (gradebook.Grade, error)
}

// Request asks for one class-quarter report
type Request struct {
	Class     string `json:"class"`
	Quarter   int    `json:"quarter"`
	OutputDir string `json:"-"`
	Open      bool   `json:"-"`
}

// Pipeline runs fetch, aggregation and report building for one class-quarter
type Pipeline struct {
	registry *gradebook.ClassRegistry
	fetcher  GradeFetcher
	builder  *ReportBuilder
	archive  ports.GradeArchivePort
	logger   *internal.Logger
}

// NewPipeline creates a report pipeline. archive is only needed for Rebuild.
func NewPipeline(registry *gradebook.ClassRegistry, fetcher GradeFetcher, builder *ReportBuilder, archive ports.GradeArchivePort, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Pipeline{
		registry: registry,
		fetcher:  fetcher,
		builder:  builder,
		archive:  archive,
		logger:   logger,
	}
}

// Registry returns the classes the pipeline knows about
func (p *Pipeline) Registry() *gradebook.ClassRegistry {
	return p.registry
}

// Validate checks a request without touching the network
func (p *Pipeline) Validate(req Request) (gradebook.ClassRef, error) {
	if gradebook.NormalizeLabel(req.Class) == "" {
		return gradebook.ClassRef{}, core.NewInvalidInputError("class", "required")
	}
	class, ok := p.registry.Lookup(req.Class)
	if !ok {
		return gradebook.ClassRef{}, core.NewInvalidInputError("class", "unknown class "+req.Class)
	}
	if req.Quarter <= 0 {
		return gradebook.ClassRef{}, core.NewInvalidInputError("quarter", "must be a positive number")
	}
	return class, nil
}

// TargetPath returns where the report for req is written
func (p *Pipeline) TargetPath(req Request, class gradebook.ClassRef) string {
	dir := req.OutputDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, gradebook.Grade{Label: class.Label, Quarter: req.Quarter}.FileName())
}

// Run builds the report for one class-quarter
func (p *Pipeline) Run(ctx context.Context, req Request) (*BuildResult, error) {
	// 1. Validate before any network call
	class, err := p.Validate(req)
	if err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	logger := p.logger.With("run_id", runID.String())
	start := time.Now()

	target := p.TargetPath(req, class)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, core.NewBuildError("output directory", err)
	}

	// 2. Fetch every subject of the class
	grade, err := p.fetcher.FetchGrade(ctx, class, req.Quarter)
	if err != nil {
		logger.Error("Class %s quarter %d: %v", class.Label, req.Quarter, err)
		return nil, err
	}

	// 3. Aggregate and build
	result, err := p.report(ctx, grade, target, BuildOptions{RunID: runID, Open: req.Open}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Run for %s finished in %s", grade.Title(), time.Since(start).Round(time.Millisecond))
	return result, nil
}

// Rebuild recomputes the Result sheet of an existing report from its raw
// subject sheets, without contacting the gradebook
func (p *Pipeline) Rebuild(ctx context.Context, path string, open bool) (*BuildResult, error) {
	if p.archive == nil {
		return nil, core.NewInvalidInputError("path", "no workbook reader configured")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, core.NewInvalidInputError("path", err.Error())
	}

	runID := core.NewRunID()
	logger := p.logger.With("run_id", runID.String())

	grade, err := p.archive.ReadGrade(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Rebuilding %s from %d stored subjects", path, len(grade.Subjects))

	return p.report(ctx, grade, path, BuildOptions{RunID: runID, Open: open}, logger)
}

func (p *Pipeline) report(ctx context.Context, grade gradebook.Grade, target string, opts BuildOptions, logger *internal.Logger) (*BuildResult, error) {
	if len(grade.Subjects) == 0 {
		logger.Warn("%s: %v, writing an empty report", grade.Title(), core.ErrMissingRoster)
	}

	reports := analysis.Aggregate(grade)
	logger.Debug("%s: %d students aggregated over %d subjects", grade.Title(), len(reports), len(grade.Subjects))

	return p.builder.BuildReport(ctx, grade, reports, target, opts)
}
