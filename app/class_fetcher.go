package app

import (
	"context"
	"slices"
	"strings"
	"time"

	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"
	"gokundoluk/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultStagger is the pause between two subject fetch launches
const DefaultStagger = 100 * time.Millisecond

// ClassFetcher discovers the subjects of a class and fetches them concurrently
type ClassFetcher struct {
	discovery     ports.SubjectDiscoveryPort
	source        ports.SubjectSourcePort
	stagger       time.Duration
	maxConcurrent int
	logger        *internal.Logger
}

// ClassFetcherOption configures a ClassFetcher
type ClassFetcherOption func(*ClassFetcher)

// WithStagger sets the delay between task launches
func WithStagger(d time.Duration) ClassFetcherOption {
	return func(f *ClassFetcher) { f.stagger = d }
}

// WithMaxConcurrent caps in-flight fetches; 0 means one goroutine per subject
func WithMaxConcurrent(n int) ClassFetcherOption {
	return func(f *ClassFetcher) { f.maxConcurrent = n }
}

// WithFetchLogger sets the logger
func WithFetchLogger(l *internal.Logger) ClassFetcherOption {
	return func(f *ClassFetcher) { f.logger = l }
}

// NewClassFetcher creates a class fetcher
func NewClassFetcher(discovery ports.SubjectDiscoveryPort, source ports.SubjectSourcePort, opts ...ClassFetcherOption) *ClassFetcher {
	f := &ClassFetcher{
		discovery: discovery,
		source:    source,
		stagger:   DefaultStagger,
		logger:    internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type subjectOutcome struct {
	subject gradebook.Subject
	err     error
}

// FetchGrade returns the grade for a class and quarter. Only a discovery
// failure is returned as an error; subjects that fail or come back empty are
// dropped. Subjects are sorted by name, so completion order never shows.
func (f *ClassFetcher) FetchGrade(ctx context.Context, class gradebook.ClassRef, quarter int) (gradebook.Grade, error) {
	start := time.Now()
	f.logger.Info("Fetching class %s quarter %d", class.Label, quarter)

	links, err := f.discovery.ListSubjects(ctx, class, quarter)
	if err != nil {
		return gradebook.Grade{}, err
	}

	// each task writes only its own slot; slots are read after Wait
	outcomes := make([]subjectOutcome, len(links))

	var g errgroup.Group
	if f.maxConcurrent > 0 {
		g.SetLimit(f.maxConcurrent)
	}
	for i, link := range links {
		i, link := i, link
		if i > 0 && f.stagger > 0 {
			pause(ctx, f.stagger)
		}
		f.logger.Debug("Fetching subject %s", link.Name)
		g.Go(func() error {
			subject, err := f.source.FetchSubject(ctx, link)
			outcomes[i] = subjectOutcome{subject: subject, err: err}
			return nil
		})
	}
	_ = g.Wait()

	subjects := make([]gradebook.Subject, 0, len(outcomes))
	for i, out := range outcomes {
		switch {
		case out.err != nil:
			f.logger.Warn("Skipping subject %s: %v", links[i].Name, out.err)
		case out.subject.IsVoid():
			f.logger.Warn("Skipping subject %s: table has no rows", links[i].Name)
		default:
			subjects = append(subjects, out.subject)
		}
	}

	slices.SortStableFunc(subjects, func(a, b gradebook.Subject) int {
		return strings.Compare(a.Name, b.Name)
	})

	f.logger.Info("Fetched class %s quarter %d: %d of %d subjects in %s",
		class.Label, quarter, len(subjects), len(links), time.Since(start).Round(time.Millisecond))

	return gradebook.Grade{Label: class.Label, Quarter: quarter, Subjects: subjects}, nil
}

// pause sleeps for d or until ctx is done
func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
