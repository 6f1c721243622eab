// Package dispatcher routes verbs to handlers and coordinates execution.
package dispatcher

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/event/loop"
	"github.com/dshills/gitpanel/internal/integration/git"
)

// Dispatcher routes verbs to handlers and coordinates execution.
type Dispatcher struct {
	mu sync.RWMutex

	registry *Registry
	router   *Router

	repo     *git.Repository
	prompter git.Prompter
	logger   zerolog.Logger

	config  Config
	metrics *Metrics

	preHooks  []PreDispatchHook
	postHooks []PostDispatchHook

	// latest holds one generation per verb for DispatchLatest.
	latest map[string]*loop.Generation
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRepository sets the repository verbs run against.
func WithRepository(repo *git.Repository) Option {
	return func(d *Dispatcher) {
		d.repo = repo
	}
}

// WithPrompter sets the prompter handed to interactive verbs.
func WithPrompter(p git.Prompter) Option {
	return func(d *Dispatcher) {
		d.prompter = p
	}
}

// WithLogger sets the dispatch logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a dispatcher with the given configuration.
func New(config Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		router:   NewRouter(),
		logger:   zerolog.Nop(),
		config:   config,
		latest:   make(map[string]*loop.Generation),
	}
	for _, opt := range opts {
		opt(d)
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// NewWithDefaults creates a dispatcher with default configuration.
func NewWithDefaults(opts ...Option) *Dispatcher {
	return New(DefaultConfig(), opts...)
}

// SetRepository replaces the repository verbs run against.
func (d *Dispatcher) SetRepository(repo *git.Repository) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.repo = repo
}

// Repository returns the current repository, or nil.
func (d *Dispatcher) Repository() *git.Repository {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.repo
}

// SetPrompter replaces the prompter.
func (d *Dispatcher) SetPrompter(p git.Prompter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prompter = p
}

// Dispatch parses args and runs verb synchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, verb string, args []string) handler.Result {
	return d.DispatchAction(ctx, NewAction(verb, args))
}

// DispatchAction runs an already parsed action synchronously.
func (d *Dispatcher) DispatchAction(ctx context.Context, action handler.Action) handler.Result {
	start := time.Now()

	if strings.TrimSpace(action.Name) == "" {
		return handler.Error(ErrInvalidAction)
	}

	if d.config.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.DefaultTimeout)
		defer cancel()
	}
	ectx := d.buildContext(ctx, action.Name)

	if !d.runPreHooks(&action, ectx) {
		return handler.Result{Status: handler.StatusCancelled, Error: ErrActionCancelled, Message: "cancelled by hook"}
	}

	h := d.router.Route(action.Name)
	if h == nil {
		h = d.registry.Get(action.Name)
	}
	if h == nil {
		return handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Name))
	}

	var result handler.Result
	if d.config.RecoverFromPanic {
		result = d.executeWithRecovery(h, action, ectx)
	} else {
		result = h.Handle(action, ectx)
	}
	result.Generation = ectx.Generation

	d.runPostHooks(&action, ectx, &result)

	elapsed := time.Since(start)
	if d.metrics != nil {
		d.metrics.RecordDispatch(action.Name, elapsed, result.Status)
	}

	ev := ectx.Logger.Debug()
	if result.IsError() {
		ev = ectx.Logger.Warn().Err(result.Error)
	}
	ev.Str("status", result.Status.String()).Dur("elapsed", elapsed).Msg("dispatch")

	return result
}

// DispatchAsync runs verb on its own goroutine and posts fn with the
// result to s. Every result is delivered.
func (d *Dispatcher) DispatchAsync(ctx context.Context, s loop.Scheduler, verb string, args []string, fn func(handler.Result)) {
	action := NewAction(verb, args)
	go func() {
		result := d.DispatchAction(ctx, action)
		if !s.Post(func() { fn(result) }) {
			d.logger.Debug().Str("verb", verb).Msg("scheduler stopped, result dropped")
		}
	}()
}

// DispatchLatest is DispatchAsync for refresh-style queries: when the
// same verb is dispatched again before an earlier result is delivered,
// the earlier result is dropped.
func (d *Dispatcher) DispatchLatest(ctx context.Context, s loop.Scheduler, verb string, args []string, fn func(handler.Result)) {
	gen := d.generationFor(verb)
	token := gen.Next()
	d.DispatchAsync(ctx, s, verb, args, func(r handler.Result) {
		if gen.IsCurrent(token) {
			fn(r)
		}
	})
}

func (d *Dispatcher) generationFor(verb string) *loop.Generation {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.latest[verb]
	if !ok {
		g = &loop.Generation{}
		d.latest[verb] = g
	}
	return g
}

// executeWithRecovery executes a handler, converting a panic to an error result.
func (d *Dispatcher) executeWithRecovery(h handler.Handler, action handler.Action, ctx *execctx.ExecutionContext) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)

			ctx.Logger.Error().Interface("panic", r).Bytes("stack", stack[:n]).Msg("handler panic")
			result = handler.Error(fmt.Errorf("%w: %s: %v", ErrPanic, action.Name, r))

			if d.metrics != nil {
				d.metrics.RecordPanic(action.Name)
			}
		}
	}()

	return h.Handle(action, ctx)
}

func (d *Dispatcher) buildContext(ctx context.Context, verb string) *execctx.ExecutionContext {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return execctx.New(ctx).
		WithRepository(d.repo).
		WithPrompter(d.prompter).
		WithLogger(d.logger.With().Str("verb", verb).Logger())
}

// RegisterHandler registers a handler for an exact verb.
func (d *Dispatcher) RegisterHandler(verb string, h handler.Handler) {
	d.registry.Register(verb, h)
}

// RegisterHandlerFunc registers fn for verb with a usage line.
func (d *Dispatcher) RegisterHandlerFunc(verb, usage string, fn func(handler.Action, *execctx.ExecutionContext) handler.Result) {
	d.registry.Register(verb, handler.NewHandlerFunc(fn))
	if usage != "" {
		d.registry.SetUsage(verb, usage)
	}
}

// RegisterNamespace registers a namespace handler.
func (d *Dispatcher) RegisterNamespace(namespace string, h handler.NamespaceHandler) {
	d.router.RegisterNamespace(namespace, h)
}

// UnregisterHandler removes the handlers for a verb.
func (d *Dispatcher) UnregisterHandler(verb string) {
	d.registry.Unregister(verb)
}

// Verb describes one dispatchable verb.
type Verb struct {
	Name  string
	Usage string
}

// Verbs lists every verb from the registry and from namespace handlers
// that can enumerate their actions, sorted by name.
func (d *Dispatcher) Verbs() []Verb {
	var verbs []Verb
	for _, name := range d.registry.List() {
		verbs = append(verbs, Verb{Name: name, Usage: d.registry.Usage(name)})
	}
	for _, ns := range d.router.Namespaces() {
		lister, ok := d.router.Namespace(ns).(interface{ Actions() map[string]string })
		if !ok {
			continue
		}
		for name, usage := range lister.Actions() {
			verbs = append(verbs, Verb{Name: name, Usage: usage})
		}
	}
	sort.Slice(verbs, func(i, j int) bool { return verbs[i].Name < verbs[j].Name })
	return verbs
}

// RegisterPreHook registers a pre-dispatch hook.
func (d *Dispatcher) RegisterPreHook(hook PreDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preHooks = append(d.preHooks, hook)
}

// RegisterPostHook registers a post-dispatch hook.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// runPreHooks returns false if any hook cancels the action.
func (d *Dispatcher) runPreHooks(action *handler.Action, ctx *execctx.ExecutionContext) bool {
	d.mu.RLock()
	hooks := append([]PreDispatchHook(nil), d.preHooks...)
	d.mu.RUnlock()

	for _, h := range hooks {
		if !h.PreDispatch(action, ctx) {
			return false
		}
	}
	return true
}

func (d *Dispatcher) runPostHooks(action *handler.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	d.mu.RLock()
	hooks := append([]PostDispatchHook(nil), d.postHooks...)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(action, ctx, result)
	}
}

// Registry returns the handler registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Router returns the namespace router.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Metrics returns the metrics collector, or nil when disabled.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}
