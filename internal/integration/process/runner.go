package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dshills/gitpanel/internal/integration/process"

// waitDelay bounds how long Wait lingers on pipes held open by grandchildren.
const waitDelay = time.Second

// Options configures a single Run.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds KEY=value overrides appended to the inherited environment.
	Env []string

	// Stdin is written to the child and then closed. Nil closes stdin at once.
	Stdin []byte

	// Timeout overrides the runner default. Zero uses the default;
	// a negative value disables the deadline for this call.
	Timeout time.Duration
}

// Runner spawns supervised child processes.
type Runner struct {
	supervisor *Supervisor
	timeout    time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSupervisor sets the supervisor that tracks children.
func WithSupervisor(s *Supervisor) RunnerOption {
	return func(r *Runner) {
		r.supervisor = s
	}
}

// WithTimeout sets the default per-call deadline (0 = none).
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTracerProvider sets the provider used for per-process spans.
func WithTracerProvider(tp trace.TracerProvider) RunnerOption {
	return func(r *Runner) {
		r.tracer = tp.Tracer(tracerName)
	}
}

// NewRunner creates a Runner. Without WithSupervisor it owns a private one.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: zerolog.Nop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.supervisor == nil {
		r.supervisor = NewSupervisor(WithSupervisorLogger(r.logger))
	}
	return r
}

// Supervisor returns the supervisor tracking this runner's children.
func (r *Runner) Supervisor() *Supervisor {
	return r.supervisor
}

// Shutdown terminates in-flight children; see Supervisor.Shutdown.
func (r *Runner) Shutdown(grace time.Duration) {
	r.supervisor.Shutdown(grace)
}

// Run starts argv and returns its pending outcome.
//
// A non-zero exit resolves the Future normally. The Future fails with
// ErrSpawn when the child cannot be started, ErrTimeout when the deadline
// expires, or ctx.Err() when ctx is cancelled first.
func (r *Runner) Run(ctx context.Context, argv []string, opts Options) *Future {
	f := newFuture()
	command := append([]string(nil), argv...)

	if len(command) == 0 {
		f.resolve(Result{}, fmt.Errorf("%w: empty command", ErrSpawn))
		return f
	}

	ctx, span := r.tracer.Start(ctx, "process.run", trace.WithAttributes(
		attribute.String("process.executable", command[0]),
		attribute.StringSlice("process.args", command[1:]),
		attribute.String("process.dir", opts.Dir),
	))

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	proc, err := r.supervisor.Start(command[0], cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "spawn failed")
		span.End()
		if errors.Is(err, ErrProcessLimit) {
			r.logger.Warn().Err(err).Strs("argv", command).Msg("process limit reached")
			f.resolve(Result{Command: command}, fmt.Errorf("%s: %w", command[0], err))
			return f
		}
		r.logger.Warn().Err(err).Strs("argv", command).Msg("spawn failed")
		f.resolve(Result{Command: command}, fmt.Errorf("%w: %s: %w", ErrSpawn, command[0], err))
		return f
	}

	timeout := r.timeout
	if opts.Timeout != 0 {
		timeout = opts.Timeout
	}

	go r.await(ctx, span, proc, opts.Stdin, timeout, &stdout, &stderr, command, f)
	return f
}

// await feeds stdin, waits for exit or a deadline and resolves f.
func (r *Runner) await(ctx context.Context, span trace.Span, proc *Process, stdin []byte,
	timeout time.Duration, stdout, stderr *bytes.Buffer, command []string, f *Future) {
	defer span.End()

	go func() {
		if len(stdin) > 0 && proc.Stdin != nil {
			if _, err := proc.Stdin.Write(stdin); err != nil {
				r.logger.Debug().Err(err).Str("id", proc.ID).Msg("stdin write")
			}
		}
		_ = proc.closeStdin()
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var failure error
	select {
	case <-proc.Done():
	case <-deadline:
		_ = proc.Kill()
		<-proc.Done()
		failure = fmt.Errorf("%w after %s: %s", ErrTimeout, timeout, Result{Command: command})
	case <-ctx.Done():
		_ = proc.Kill()
		<-proc.Done()
		failure = ctx.Err()
	}

	res := Result{
		ExitCode: proc.ExitCode(),
		Signal:   proc.Signal(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Command:  command,
		Duration: proc.Runtime(),
	}

	span.SetAttributes(
		attribute.Int("process.exit_code", res.ExitCode),
		attribute.Int("process.signal", res.Signal),
	)
	if failure != nil {
		span.RecordError(failure)
		span.SetStatus(codes.Error, failure.Error())
	}

	r.logger.Debug().
		Str("id", proc.ID).
		Strs("argv", command).
		Int("exit", res.ExitCode).
		Dur("duration", res.Duration).
		Err(failure).
		Msg("process finished")

	f.resolve(res, failure)
}
