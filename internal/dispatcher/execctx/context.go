// Package execctx provides the execution context for verb handlers.
package execctx

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/event/loop"
	"github.com/dshills/gitpanel/internal/integration/git"
)

// ExecutionContext carries what a handler needs to run one verb.
type ExecutionContext struct {
	// Context bounds every subprocess the handler starts.
	Context context.Context

	// Repo is the repository the verb runs against.
	Repo *git.Repository

	// Prompter answers confirmation and input questions.
	Prompter git.Prompter

	// Logger is scoped to the verb being dispatched.
	Logger zerolog.Logger

	// Generation is the repository generation when dispatch started.
	Generation loop.Token

	// DryRun asks mutating handlers to report what they would do.
	DryRun bool

	data map[string]any
}

// New creates an execution context bound to ctx.
func New(ctx context.Context) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Context: ctx,
		Logger:  zerolog.Nop(),
	}
}

// WithRepository returns the context with the repository set and its
// generation captured.
func (c *ExecutionContext) WithRepository(repo *git.Repository) *ExecutionContext {
	c.Repo = repo
	if repo != nil {
		c.Generation = repo.Generation().Current()
	}
	return c
}

// WithPrompter returns the context with the prompter set.
func (c *ExecutionContext) WithPrompter(p git.Prompter) *ExecutionContext {
	c.Prompter = p
	return c
}

// WithLogger returns the context with the logger set.
func (c *ExecutionContext) WithLogger(logger zerolog.Logger) *ExecutionContext {
	c.Logger = logger
	return c
}

// WithDryRun returns the context with dry run mode set.
func (c *ExecutionContext) WithDryRun(dryRun bool) *ExecutionContext {
	c.DryRun = dryRun
	return c
}

// IsStale reports whether the repository changed since dispatch started.
func (c *ExecutionContext) IsStale() bool {
	if c.Repo == nil {
		return false
	}
	return !c.Repo.Generation().IsCurrent(c.Generation)
}

// SetData sets a context data value. Hooks use it to pass values to handlers.
func (c *ExecutionContext) SetData(key string, value any) {
	if c.data == nil {
		c.data = make(map[string]any)
	}
	c.data[key] = value
}

// GetData retrieves a context data value.
func (c *ExecutionContext) GetData(key string) (any, bool) {
	if c.data == nil {
		return nil, false
	}
	v, ok := c.data[key]
	return v, ok
}

// GetDataString retrieves a string value from context data.
func (c *ExecutionContext) GetDataString(key string) string {
	if v, ok := c.GetData(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Validate checks that a repository is available.
func (c *ExecutionContext) Validate() error {
	if c.Repo == nil {
		return ErrMissingRepository
	}
	return nil
}

// ValidateInteractive checks that a repository and a prompter are available.
func (c *ExecutionContext) ValidateInteractive() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Prompter == nil {
		return ErrMissingPrompter
	}
	return nil
}
