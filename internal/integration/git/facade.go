package git

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dshills/gitpanel/internal/integration/process"
)

// Runner starts one child process per call.
// *process.Runner satisfies it; tests substitute scripted fakes.
type Runner interface {
	Run(ctx context.Context, argv []string, opts process.Options) *process.Future
}

// defaultEnv keeps git from prompting on the terminal and pins its
// messages to the C locale so output matchers see English text.
var defaultEnv = []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}

// Facade prepends the configured binary to every invocation and
// delegates to a Runner.
type Facade struct {
	runner  Runner
	gitPath string
	ghPath  string
	env     []string
	logger  zerolog.Logger
}

// FacadeOption configures a Facade.
type FacadeOption func(*Facade)

// WithGitPath sets the git binary. Default "git".
func WithGitPath(path string) FacadeOption {
	return func(f *Facade) {
		if path != "" {
			f.gitPath = path
		}
	}
}

// WithGhPath sets the gh binary. Default "gh".
func WithGhPath(path string) FacadeOption {
	return func(f *Facade) {
		if path != "" {
			f.ghPath = path
		}
	}
}

// WithEnv adds KEY=value pairs applied after the defaults, so they can
// override GIT_TERMINAL_PROMPT and LC_ALL.
func WithEnv(env ...string) FacadeOption {
	return func(f *Facade) {
		f.env = append(f.env, env...)
	}
}

// WithFacadeLogger sets the logger for invocation tracing.
func WithFacadeLogger(logger zerolog.Logger) FacadeOption {
	return func(f *Facade) {
		f.logger = logger
	}
}

// NewFacade creates a facade over runner.
func NewFacade(runner Runner, opts ...FacadeOption) *Facade {
	f := &Facade{
		runner:  runner,
		gitPath: "git",
		ghPath:  "gh",
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Git runs `git <args>`.
func (f *Facade) Git(ctx context.Context, args []string, opts process.Options) *process.Future {
	return f.run(ctx, f.gitPath, args, opts)
}

// Gh runs `gh <args>`.
func (f *Facade) Gh(ctx context.Context, args []string, opts process.Options) *process.Future {
	return f.run(ctx, f.ghPath, args, opts)
}

// GitPath returns the configured git binary.
func (f *Facade) GitPath() string {
	return f.gitPath
}

func (f *Facade) run(ctx context.Context, bin string, args []string, opts process.Options) *process.Future {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, bin)
	argv = append(argv, args...)

	env := make([]string, 0, len(defaultEnv)+len(f.env)+len(opts.Env))
	env = append(env, defaultEnv...)
	env = append(env, f.env...)
	env = append(env, opts.Env...)
	opts.Env = env

	f.logger.Debug().
		Strs("argv", argv).
		Str("dir", opts.Dir).
		Bool("stdin", opts.Stdin != nil).
		Msg("invoke")

	return f.runner.Run(ctx, argv, opts)
}

// CombinedOutput returns trimmed stdout if non-empty, else trimmed
// stderr, else "".
func CombinedOutput(res process.Result) string {
	if out := strings.TrimSpace(res.Stdout); out != "" {
		return out
	}
	return strings.TrimSpace(res.Stderr)
}
