// Package app wires gitpanel's components together from a Config and
// manages their lifecycle.
package app

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dshills/gitpanel/internal/config"
	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/event"
	"github.com/dshills/gitpanel/internal/event/loop"
	"github.com/dshills/gitpanel/internal/integration/git"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Application owns every long-lived component of one gitpanel session.
type Application struct {
	cfg  *config.Config
	opts Options

	logger     zerolog.Logger
	tracer     *sdktrace.TracerProvider
	supervisor *process.Supervisor
	runner     *process.Runner
	bus        *event.Bus
	manager    *git.Manager
	repo       *git.Repository
	dispatcher *dispatcher.Dispatcher

	closed atomic.Bool
}

// Options configures the application beyond the file configuration.
type Options struct {
	// Dir is where repository discovery starts. Empty means the
	// working directory.
	Dir string

	// Prompter answers interactive questions. Nil leaves interactive
	// verbs unavailable.
	Prompter git.Prompter

	// LogOutput receives logs. Defaults to os.Stderr.
	LogOutput io.Writer

	// TraceOutput, when set, receives one JSON span per subprocess.
	TraceOutput io.Writer

	// Scheduler receives event handler calls. Nil runs them on the
	// publishing goroutine.
	Scheduler loop.Scheduler
}

// New builds an application. A missing repository is not an error:
// the dispatcher still serves verbs that do not need one.
func New(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{cfg: cfg, opts: opts}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the configuration the application was built from.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() zerolog.Logger {
	return app.logger
}

// Dispatcher returns the verb dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher {
	return app.dispatcher
}

// Repository returns the discovered repository, or nil.
func (app *Application) Repository() *git.Repository {
	return app.repo
}

// Manager returns the git manager.
func (app *Application) Manager() *git.Manager {
	return app.manager
}

// Runner returns the subprocess runner.
func (app *Application) Runner() *process.Runner {
	return app.runner
}

// Bus returns the event bus git events are published on.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Shutdown stops watchers, terminates running children and flushes
// spans. It is safe to call more than once.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.closed.Swap(true) {
		return nil
	}
	return app.release(ctx)
}

func (app *Application) release(ctx context.Context) error {
	var firstErr error
	if app.manager != nil {
		if err := app.manager.Close(); err != nil {
			firstErr = err
		}
		app.manager = nil
		app.repo = nil
	}
	if app.runner != nil {
		app.runner.Shutdown(app.cfg.Process.ShutdownGrace.D())
		app.runner = nil
	}
	if app.tracer != nil {
		if err := app.tracer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		app.tracer = nil
	}
	return firstErr
}
