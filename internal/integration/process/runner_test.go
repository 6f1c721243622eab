package process

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanScheduler queues callbacks for the test goroutine to run.
type chanScheduler chan func()

func (c chanScheduler) Post(fn func()) bool {
	c <- fn
	return true
}

func run(t *testing.T, r *Runner, argv []string, opts Options) (Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.Run(ctx, argv, opts).Wait(ctx)
}

func TestRunner_CapturesOutput(t *testing.T) {
	r := NewRunner()

	res, err := run(t, r, []string{"sh", "-c", "echo out; echo err >&2"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, []string{"sh", "-c", "echo out; echo err >&2"}, res.Command)
	assert.True(t, res.Success())
}

func TestRunner_NonZeroExitIsNotAnError(t *testing.T) {
	r := NewRunner()

	res, err := run(t, r, []string{"sh", "-c", "echo nope >&2; exit 3"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "nope\n", res.Stderr)
	assert.False(t, res.Success())
}

func TestRunner_SpawnFailure(t *testing.T) {
	r := NewRunner()

	_, err := run(t, r, []string{"definitely-not-a-real-binary-xyz"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawn)

	_, err = run(t, r, nil, Options{})
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestRunner_ProcessLimitIsNotSpawnFailure(t *testing.T) {
	r := NewRunner(WithSupervisor(NewSupervisor(WithMaxProcesses(1))))
	defer r.Shutdown(time.Second)

	r.Run(context.Background(), []string{"sleep", "10"}, Options{Timeout: -1})

	_, err := run(t, r, []string{"true"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProcessLimit)
	assert.NotErrorIs(t, err, ErrSpawn)
}

func TestRunner_Stdin(t *testing.T) {
	r := NewRunner()

	res, err := run(t, r, []string{"cat"}, Options{Stdin: []byte("line one\nline two\n")})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", res.Stdout)

	// Without a payload stdin is closed, so cat exits immediately.
	res, err = run(t, r, []string{"cat"}, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)
}

func TestRunner_DirAndEnv(t *testing.T) {
	r := NewRunner()
	dir := t.TempDir()

	res, err := run(t, r, []string{"sh", "-c", "pwd; echo $GITPANEL_TEST"}, Options{
		Dir: dir,
		Env: []string{"GITPANEL_TEST=hello"},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Stdout, filepath.Base(dir))
	assert.Contains(t, res.Stdout, "hello")
}

func TestRunner_Timeout(t *testing.T) {
	r := NewRunner(WithTimeout(100 * time.Millisecond))

	start := time.Now()
	res, err := run(t, r, []string{"sleep", "10"}, Options{})
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NotZero(t, res.Signal)

	// A per-call override disables the default deadline.
	res, err = run(t, r, []string{"sh", "-c", "sleep 0.2; echo done"}, Options{Timeout: -1})
	require.NoError(t, err)
	assert.Equal(t, "done\n", res.Stdout)
}

func TestRunner_ContextCancel(t *testing.T) {
	r := NewRunner()
	ctx, cancel := context.WithCancel(context.Background())

	f := r.Run(ctx, []string{"sleep", "10"}, Options{})
	cancel()

	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled process not reaped")
	}
	_, err := f.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_ThenDeliversOnScheduler(t *testing.T) {
	r := NewRunner()
	sched := make(chanScheduler, 1)

	delivered := false
	r.Run(context.Background(), []string{"echo", "hi"}, Options{}).Then(sched, func(res Result, err error) {
		delivered = true
		assert.NoError(t, err)
		assert.Equal(t, "hi\n", res.Stdout)
	})

	assert.False(t, delivered, "callback must not run before the scheduler runs it")

	select {
	case fn := <-sched:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("callback never posted")
	}
	assert.True(t, delivered)
}

func TestCompletedFutureStillDefers(t *testing.T) {
	sched := make(chanScheduler, 1)
	called := false

	Completed(Result{ExitCode: 1}, nil).Then(sched, func(res Result, err error) {
		called = true
	})
	assert.False(t, called)

	fn := <-sched
	fn()
	assert.True(t, called)
}

func TestRunner_ShutdownKillsInFlight(t *testing.T) {
	r := NewRunner()
	f := r.Run(context.Background(), []string{"sleep", "10"}, Options{Timeout: -1})

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, r.Supervisor().Count())

	r.Shutdown(time.Second)

	res, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, res.Signal)

	_, err = run(t, r, []string{"true"}, Options{})
	assert.ErrorIs(t, err, ErrSpawn)
	assert.ErrorIs(t, err, ErrSupervisorShutdown)
}
