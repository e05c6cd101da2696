package container

import (
	"context"
	"errors"
	"fmt"

	"gokundoluk/adapters/excel"
	"gokundoluk/adapters/kundoluk"
	"gokundoluk/app"
	"gokundoluk/domain/core"
	"gokundoluk/domain/gradebook"
	"gokundoluk/internal"
	"gokundoluk/internal/config"
	"gokundoluk/internal/launcher"
	"gokundoluk/ports"
)

// errNoSession is reported when a run needs the gradebook but no session is configured
var errNoSession = errors.New("no gradebook session configured (set KUNDOLUK_SESSION)")

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	Registry *gradebook.ClassRegistry

	// Gradebook is nil when no session is configured
	Gradebook *kundoluk.Client
	Fetcher   app.GradeFetcher

	// Report components
	Store    *excel.Store
	Locker   *excel.FileLock
	Reader   *excel.GradeReader
	Launcher ports.LauncherPort
	Builder  *app.ReportBuilder
	Pipeline *app.Pipeline
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Launcher: launcher.NewSystem(),
	}

	if err := c.initRegistry(); err != nil {
		return nil, err
	}
	if err := c.initGradebook(); err != nil {
		return nil, err
	}
	c.initReports()

	return c, nil
}

func (c *Container) initRegistry() error {
	if c.Config.Classes.File == "" {
		c.Registry = gradebook.DefaultClassRegistry()
		return nil
	}
	registry, err := gradebook.LoadRegistryYAML(c.Config.Classes.File)
	if err != nil {
		return fmt.Errorf("failed to load class registry: %w", err)
	}
	c.Logger.Info("Loaded %d classes from %s", len(registry.Classes()), c.Config.Classes.File)
	c.Registry = registry
	return nil
}

func (c *Container) initGradebook() error {
	if !c.Config.HasSession() {
		c.Logger.Debug("No gradebook session, fetching disabled")
		c.Fetcher = offlineFetcher{}
		return nil
	}

	client, err := kundoluk.NewClient(kundoluk.ClientConfig{
		BaseURL:   c.Config.Kundoluk.BaseURL,
		Session:   c.Config.Kundoluk.Session,
		UserAgent: c.Config.Kundoluk.UserAgent,
		Timeout:   c.Config.Kundoluk.Timeout,
	}, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create gradebook client: %w", err)
	}

	c.Gradebook = client
	c.Fetcher = app.NewClassFetcher(client, client,
		app.WithStagger(c.Config.Fetch.Stagger),
		app.WithMaxConcurrent(c.Config.Fetch.MaxConcurrent),
		app.WithFetchLogger(c.Logger),
	)
	return nil
}

func (c *Container) initReports() {
	workbooks := excel.DefaultConfig()
	c.Store = excel.NewStore(workbooks, c.Logger)
	c.Locker = excel.NewFileLock(workbooks, c.Logger)
	c.Reader = excel.NewGradeReader(c.Logger)
	c.Builder = app.NewReportBuilder(c.Store, c.Locker, c.Launcher, c.Logger)
	c.Pipeline = app.NewPipeline(c.Registry, c.Fetcher, c.Builder, c.Reader, c.Logger)
}

// Request builds a pipeline request with the configured output settings
func (c *Container) Request(class string, quarter int) app.Request {
	return app.Request{
		Class:     class,
		Quarter:   quarter,
		OutputDir: c.Config.Report.OutputDir,
		Open:      c.Config.Report.Open,
	}
}

// Shutdown flushes buffered logs
func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.Logger.Sync(); err != nil {
		c.Logger.Debug("Logger sync: %v", err)
	}
	return ctx.Err()
}

type offlineFetcher struct{}

func (offlineFetcher) FetchGrade(_ context.Context, class gradebook.ClassRef, quarter int) (gradebook.Grade, error) {
	return gradebook.Grade{}, core.NewDiscoveryError(class.Label, quarter, errNoSession)
}
