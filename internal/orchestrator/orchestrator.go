package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/stepwise/internal/config"
	"github.com/mark3labs/stepwise/internal/hooks"
	"github.com/mark3labs/stepwise/internal/logger"
	"github.com/mark3labs/stepwise/internal/lookup"
	"github.com/mark3labs/stepwise/internal/nats"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/pages"
	"github.com/mark3labs/stepwise/internal/resource"
	"github.com/mark3labs/stepwise/internal/shared"
	"github.com/mark3labs/stepwise/internal/state"
	"github.com/mark3labs/stepwise/internal/wizard"
)

// Config holds configuration for the orchestrator.
type Config struct {
	config.Config

	WorkDir  string            // Directory hooks run in and relative paths resolve against
	Renderer resource.Renderer // Defaults to markdown
	Now      func() time.Time  // Clock handed to pages and records
	Lookups  lookup.Service    // Overrides LookupsFile
	Seed     *shared.Context   // Initial values for every run
}

// Orchestrator owns the long-lived parts of a wizard process: the content
// resolver and its cache, the optional NATS backend and event journal, and
// the file watcher. Runs are cheap and built on demand.
type Orchestrator struct {
	cfg      Config
	flow     []page.ID
	source   *resource.FSSource
	resolver *resource.Resolver
	hooks    *hooks.Config
	embedded *nats.Embedded // nil unless cache is nats
	journal  *nats.Journal  // nil unless cache is nats
	ctx      context.Context
	cancel   context.CancelFunc
	watchers sync.WaitGroup
	mu       sync.Mutex
	stopped  bool
}

// New creates a new Orchestrator with the given configuration.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.WorkDir = wd
	}
	if cfg.Renderer == nil {
		cfg.Renderer = resource.MarkdownRenderer{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	flow := make([]page.ID, len(cfg.Flow))
	for i, id := range cfg.Flow {
		flow[i] = page.ID(id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:    cfg,
		flow:   flow,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start loads lookups, hooks and content and brings up the configured cache.
func (o *Orchestrator) Start() error {
	logger.Info("Starting orchestrator (cache %s, %d pages)", o.cfg.Cache, len(o.flow))

	lookups, err := o.lookups()
	if err != nil {
		return err
	}

	factory := resource.NewFactory()
	if err := pages.Register(factory, pages.Deps{Lookups: lookups, Now: o.cfg.Now}); err != nil {
		return fmt.Errorf("registering pages: %w", err)
	}

	o.hooks, err = hooks.LoadConfig(o.cfg.WorkDir, o.cfg.HooksFile)
	if err != nil {
		return err
	}

	if o.cfg.PagesDir != "" {
		o.source = resource.DirSource(o.path(o.cfg.PagesDir))
	} else {
		o.source = resource.NewFSSource(pages.Content(), "")
	}

	cache, err := o.cache()
	if err != nil {
		return err
	}
	o.resolver = resource.NewResolver(o.source, o.cfg.Renderer, cache, factory)

	if o.cfg.Watch {
		if err := o.startWatch(cache); err != nil {
			_ = o.Stop()
			return err
		}
	}
	return nil
}

func (o *Orchestrator) lookups() (lookup.Service, error) {
	if o.cfg.Lookups != nil {
		return o.cfg.Lookups, nil
	}
	if o.cfg.LookupsFile == "" {
		return lookup.Defaults(), nil
	}
	svc, err := lookup.LoadYAML(o.path(o.cfg.LookupsFile))
	if err != nil {
		return nil, fmt.Errorf("loading lookups: %w", err)
	}
	return svc, nil
}

func (o *Orchestrator) cache() (resource.Cache, error) {
	if o.cfg.Cache != config.CacheNATS {
		return resource.NewMemoryCache(), nil
	}

	dataDir := filepath.Join(o.path(o.cfg.DataDir), "nats")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create NATS data directory: %w", err)
	}

	logger.Debug("Starting embedded NATS in %s", dataDir)
	e, err := nats.Start(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to start NATS: %w", err)
	}
	o.embedded = e

	kv, err := nats.ContentBucket(o.ctx, e.JS)
	if err != nil {
		_ = o.Stop()
		return nil, fmt.Errorf("failed to open content bucket: %w", err)
	}
	o.journal, err = nats.NewJournal(o.ctx, e.JS)
	if err != nil {
		_ = o.Stop()
		return nil, err
	}
	return resource.NewKVCache(kv), nil
}

func (o *Orchestrator) startWatch(cache resource.Cache) error {
	dir := o.source.Dir()
	if dir == "" {
		return errors.New("watch needs pages_dir: embedded content cannot change")
	}
	o.watchers.Add(1)
	go func() {
		defer o.watchers.Done()
		if err := resource.Watch(o.ctx, dir, cache); err != nil {
			logger.Error("Watching %s failed: %v", dir, err)
		}
	}()
	return nil
}

// path resolves p against the work directory.
func (o *Orchestrator) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.cfg.WorkDir, p)
}

// Resolver returns the content resolver shared by every run.
func (o *Orchestrator) Resolver() *resource.Resolver {
	return o.resolver
}

// Source returns the content source.
func (o *Orchestrator) Source() *resource.FSSource {
	return o.source
}

// Journal returns the event journal, or nil when the cache is in memory.
func (o *Orchestrator) Journal() *nats.Journal {
	return o.journal
}

// CancelDialog resolves the cancel confirmation, if the content has one.
func (o *Orchestrator) CancelDialog(ctx context.Context) (page.Root, bool) {
	root, err := o.resolver.Dialog(ctx, pages.ConfirmCancelID)
	if err != nil {
		logger.Debug("No cancel dialog: %v", err)
		return page.Root{}, false
	}
	return root, true
}

// NewRun builds and starts a wizard over the configured flow.
func (o *Orchestrator) NewRun(ctx context.Context) (*wizard.Wizard, error) {
	if o.resolver == nil {
		return nil, errors.New("orchestrator not started")
	}

	opts := []wizard.Option{}
	if o.cfg.Seed != nil {
		opts = append(opts, wizard.WithSeed(o.cfg.Seed))
	}
	w := wizard.New(page.NewLoader(o.resolver), opts...)
	if o.journal != nil {
		w.Subscribe(o.journal.Record)
	}
	if err := w.AddPages(ctx, o.flow...); err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	logger.Info("Run %s started", w.RunID())
	return w, nil
}

// Complete runs the hooks of a terminal run and saves its record.
// Non-terminal runs are saved without running hooks.
func (o *Orchestrator) Complete(ctx context.Context, w *wizard.Wizard) (*state.Record, string, error) {
	rec := state.RecordFor(w, o.cfg.Now())

	if hs := o.hooks.For(w.State()); len(hs) > 0 {
		out, err := hooks.ExecuteAll(ctx, hs, o.cfg.WorkDir, hooks.VariablesFor(w))
		if err != nil {
			return nil, "", fmt.Errorf("running %s hooks: %w", w.State(), err)
		}
		rec.HookOutput = out
	}

	path, err := state.Save(o.path(o.cfg.DataDir), rec)
	if err != nil {
		return nil, "", err
	}
	logger.Info("Run %s %s, record at %s", rec.RunID, rec.State, path)
	return rec, path, nil
}

// Runs lists saved run records, newest first.
func (o *Orchestrator) Runs() ([]*state.Record, error) {
	return state.List(o.path(o.cfg.DataDir))
}

// Run loads one saved run record.
func (o *Orchestrator) Run(runID string) (*state.Record, error) {
	return state.Load(o.path(o.cfg.DataDir), runID)
}

// Stop gracefully shuts down all components.
// Multiple calls to Stop() are safe and idempotent.
func (o *Orchestrator) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return nil
	}
	o.stopped = true

	logger.Info("Stopping orchestrator")
	o.cancel()
	o.watchers.Wait()

	var errs []error
	if o.embedded != nil {
		logger.Debug("Shutting down NATS")
		if err := o.embedded.Close(); err != nil {
			logger.Error("NATS shutdown failed: %v", err)
			errs = append(errs, fmt.Errorf("NATS shutdown failed: %w", err))
		}
		o.embedded = nil
	}

	logger.Info("Orchestrator stopped")
	return errors.Join(errs...)
}
