// Package app implements the application layer for fab.
package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/fab/internal/core/domain"
	"go.trai.ch/fab/internal/core/ports"
	"go.trai.ch/fab/internal/engine/planner"
	"go.trai.ch/fab/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// RunOptions carries the per-invocation settings of a build.
type RunOptions struct {
	// ConfigPath is the action declaration file; its directory is the
	// workspace root.
	ConfigPath string

	// CacheDir is the content-addressed cache location.
	CacheDir string

	// OutDir is the output root; records write under OutDir/<tag>/.
	OutDir string

	// Jobs bounds the worker pool; zero means the CPU count.
	Jobs int

	// Configuration is the requested tag for the top-level targets.
	Configuration string

	// FailFast stops the whole build on the first failure.
	FailFast bool

	// Retries re-attempts tool execution failures.
	Retries int
}

func (o RunOptions) withDefaults() RunOptions {
	if o.ConfigPath == "" {
		o.ConfigPath = "fab.yaml"
	}
	if o.CacheDir == "" {
		o.CacheDir = filepath.Join(".fab", "cache")
	}
	if o.OutDir == "" {
		o.OutDir = filepath.Join(".fab", "out")
	}
	if o.Configuration == "" {
		o.Configuration = string(domain.TagTarget)
	}
	return o
}

// App wires the loader, planner, and scheduler into the user-facing build
// operations.
type App struct {
	loader    ports.ConfigLoader
	planner   *planner.Planner
	scheduler *scheduler.Scheduler
	stores    ports.StoreFactory
	executor  ports.Executor
	tracer    ports.Tracer
	logger    ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	plnr *planner.Planner,
	sched *scheduler.Scheduler,
	stores ports.StoreFactory,
	executor ports.Executor,
	tracer ports.Tracer,
	logger ports.Logger,
) *App {
	return &App{
		loader:    loader,
		planner:   plnr,
		scheduler: sched,
		stores:    stores,
		executor:  executor,
		tracer:    tracer,
		logger:    logger,
	}
}

// Build plans and executes the requested targets.
func (a *App) Build(ctx context.Context, targets []string, opts RunOptions) error {
	_, err := a.build(ctx, targets, opts)
	return err
}

func (a *App) build(ctx context.Context, targets []string, opts RunOptions) (*domain.Plan, error) {
	opts = opts.withDefaults()

	tag, err := domain.ParseConfigTag(opts.Configuration)
	if err != nil {
		return nil, err
	}

	reg, err := a.loader.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	layout, err := a.layout(opts)
	if err != nil {
		return nil, err
	}

	plan, err := a.planner.Plan(reg, layout, targets, tag)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, plan.Len())
	for rec := range plan.Walk() {
		names = append(names, rec.Key.String())
	}
	a.tracer.EmitPlan(ctx, names)

	store, err := a.stores.Open(opts.CacheDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open cache")
	}

	err = a.scheduler.Run(ctx, plan, store, scheduler.Options{
		Parallelism:    opts.Jobs,
		FailFast:       opts.FailFast,
		MaxRetries:     opts.Retries,
		RetryBaseDelay: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Test builds the target, then runs its sole declared output and propagates
// the process result.
func (a *App) Test(ctx context.Context, target string, opts RunOptions) error {
	plan, err := a.build(ctx, []string{target}, opts)
	if err != nil {
		return err
	}

	key := plan.Targets()[0]
	rec, _ := plan.Record(key)
	required := rec.RequiredOutputPaths()
	if len(required) != 1 {
		err := zerr.With(zerr.New("test target must declare exactly one required output"), "target", target)
		return zerr.With(err, "outputs", len(required))
	}

	binary, err := filepath.Abs(required[0])
	if err != nil {
		return zerr.Wrap(err, "failed to resolve test binary path")
	}
	a.logger.Info("running test binary " + binary)
	return a.executor.Execute(ctx, &domain.Invocation{Tool: binary})
}

// Clean removes the cache directory. Output trees are left in place.
func (a *App) Clean(opts RunOptions) error {
	opts = opts.withDefaults()
	if err := os.RemoveAll(opts.CacheDir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove cache directory"), "path", opts.CacheDir)
	}
	a.logger.Info("removed cache directory " + opts.CacheDir)
	return nil
}

// Close flushes the progress recorder.
func (a *App) Close() error {
	return a.tracer.Close()
}

func (a *App) layout(opts RunOptions) (domain.Layout, error) {
	root, err := filepath.Abs(filepath.Dir(opts.ConfigPath))
	if err != nil {
		return domain.Layout{}, zerr.Wrap(err, "failed to resolve workspace root")
	}
	out, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return domain.Layout{}, zerr.Wrap(err, "failed to resolve output root")
	}
	return domain.Layout{Root: root, OutDir: out}, nil
}
