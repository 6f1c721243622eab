package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/handlers/gitops"
	"github.com/dshills/gitpanel/internal/event"
	"github.com/dshills/gitpanel/internal/integration/git"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// bootstrapper initializes components in dependency order and releases
// the ones already started when a later step fails.
type bootstrapper struct {
	app *Application
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{app: app}
}

func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initTracing,
		b.initRunner,
		b.initEventBus,
		b.initManager,
		b.openRepository,
		b.initDispatcher,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLogger() error {
	logger, err := NewLogger(b.app.cfg.Log, b.app.opts.LogOutput)
	if err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	b.app.logger = logger
	return nil
}

func (b *bootstrapper) initTracing() error {
	if b.app.opts.TraceOutput == nil {
		return nil
	}
	tp, err := newTracerProvider(b.app.opts.TraceOutput)
	if err != nil {
		return &InitError{Component: "tracing", Err: err}
	}
	b.app.tracer = tp
	return nil
}

func (b *bootstrapper) initRunner() error {
	cfg := b.app.cfg.Process
	logger := b.app.logger.With().Str("component", "process").Logger()

	b.app.supervisor = process.NewSupervisor(
		process.WithMaxProcesses(cfg.MaxProcesses),
		process.WithSupervisorLogger(logger),
	)

	opts := []process.RunnerOption{
		process.WithSupervisor(b.app.supervisor),
		process.WithTimeout(cfg.Timeout.D()),
		process.WithLogger(logger),
	}
	if b.app.tracer != nil {
		opts = append(opts, process.WithTracerProvider(b.app.tracer))
	}
	b.app.runner = process.NewRunner(opts...)
	return nil
}

func (b *bootstrapper) initEventBus() error {
	opts := []event.Option{
		event.WithLogger(b.app.logger.With().Str("component", "event").Logger()),
	}
	if b.app.opts.Scheduler != nil {
		opts = append(opts, event.WithScheduler(b.app.opts.Scheduler))
	}
	b.app.bus = event.NewBus(opts...)
	return nil
}

func (b *bootstrapper) initManager() error {
	cfg := b.app.cfg
	b.app.manager = git.NewManager(git.ManagerConfig{
		Runner:             b.app.runner,
		GitPath:            cfg.Git.Path,
		GhPath:             cfg.Git.GhPath,
		Env:                cfg.Git.Env,
		CacheTTL:           cfg.Cache.TTL.D(),
		PushRemote:         cfg.Push.Remote,
		NoUpstreamPatterns: cfg.Push.NoUpstreamPatterns,
		GraphLimit:         cfg.Graph.Limit,
		ReflogCount:        cfg.Reflog.Count,
		Watch:              cfg.Watch.Enabled,
		WatchDebounce:      cfg.Watch.Debounce.D(),
		EventBus:           b.app.bus,
		Logger:             b.app.logger.With().Str("component", "git").Logger(),
	})
	return nil
}

func (b *bootstrapper) openRepository() error {
	dir := b.app.opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &InitError{Component: "repository", Err: err}
		}
		dir = wd
	}

	repo, err := b.app.manager.Discover(dir)
	switch {
	case errors.Is(err, git.ErrRepositoryNotFound):
		b.app.logger.Debug().Str("dir", dir).Msg("no repository found")
		return nil
	case err != nil:
		return &InitError{Component: "repository", Err: err}
	}
	b.app.repo = repo
	return nil
}

func (b *bootstrapper) initDispatcher() error {
	cfg := dispatcher.DefaultConfig().WithTimeout(b.app.cfg.Dispatch.Timeout.D())
	if b.app.cfg.Dispatch.Metrics {
		cfg = cfg.WithMetrics()
	}

	d := dispatcher.New(cfg,
		dispatcher.WithRepository(b.app.repo),
		dispatcher.WithPrompter(b.app.opts.Prompter),
		dispatcher.WithLogger(b.app.logger.With().Str("component", "dispatcher").Logger()),
	)
	d.RegisterPreHook(dispatcher.DryRunHook{})
	d.RegisterPostHook(dispatcher.StaleResultHook{})
	gitops.Register(d)

	b.app.dispatcher = d
	return nil
}

func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = b.app.release(ctx)
}
