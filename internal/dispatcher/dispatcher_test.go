package dispatcher_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// chanScheduler hands posted callbacks to the test goroutine.
type chanScheduler chan func()

func (s chanScheduler) Post(fn func()) bool {
	s <- fn
	return true
}

func ok(handler.Action, *execctx.ExecutionContext) handler.Result {
	return handler.Success()
}

func TestNewWithDefaults(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	if d.Registry() == nil {
		t.Error("expected non-nil registry")
	}
	if d.Router() == nil {
		t.Error("expected non-nil router")
	}
	if d.Metrics() != nil {
		t.Error("expected nil metrics by default")
	}
	if !d.Config().RecoverFromPanic {
		t.Error("expected panic recovery by default")
	}
	if d.Repository() != nil {
		t.Error("expected no repository")
	}
}

func TestDispatchNoHandler(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	result := d.Dispatch(context.Background(), "unknown", nil)
	if !result.IsError() {
		t.Fatalf("expected StatusError for unknown verb, got %v", result.Status)
	}
	if !errors.Is(result.Error, dispatcher.ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", result.Error)
	}
}

func TestDispatchInvalidAction(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	result := d.Dispatch(context.Background(), "  ", nil)
	if !errors.Is(result.Error, dispatcher.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", result.Error)
	}
}

func TestRegisterHandler(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	var got handler.Action
	d.RegisterHandlerFunc("merge", "merge <branch>", func(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		got = action
		return handler.SuccessWithMessage("merged")
	})

	result := d.Dispatch(context.Background(), "merge", []string{"--no-ff", "feature"})
	if !result.IsOK() {
		t.Fatalf("expected StatusOK, got %v", result.Status)
	}
	if got.Name != "merge" || got.Args.Arg(0) != "feature" || !got.Args.Bool("no-ff") {
		t.Errorf("unexpected action %+v", got)
	}
	if d.Registry().Usage("merge") != "merge <branch>" {
		t.Errorf("unexpected usage %q", d.Registry().Usage("merge"))
	}
}

func TestRegisterNamespace(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	ns := handler.NewBaseNamespaceHandler("stash")
	ns.Register("stash.list", "stash.list", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		return handler.SuccessWithMessage("listed")
	})
	d.RegisterNamespace("stash", ns)

	result := d.Dispatch(context.Background(), "stash.list", nil)
	if result.Message != "listed" {
		t.Errorf("expected listed, got %q", result.Message)
	}

	result = d.Dispatch(context.Background(), "stash.nope", nil)
	if !errors.Is(result.Error, dispatcher.ErrNoHandler) {
		t.Errorf("expected ErrNoHandler, got %v", result.Error)
	}
}

func TestRouterPrecedence(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	d.RegisterHandlerFunc("stash.list", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		return handler.SuccessWithMessage("registry")
	})
	ns := handler.NewBaseNamespaceHandler("stash")
	ns.Register("stash.list", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		return handler.SuccessWithMessage("namespace")
	})
	d.RegisterNamespace("stash", ns)

	if r := d.Dispatch(context.Background(), "stash.list", nil); r.Message != "namespace" {
		t.Errorf("expected namespace handler to win, got %q", r.Message)
	}
}

func TestUnregisterHandler(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterHandlerFunc("status", "", ok)
	d.UnregisterHandler("status")

	if r := d.Dispatch(context.Background(), "status", nil); !r.IsError() {
		t.Errorf("expected error after unregister, got %v", r.Status)
	}
}

func TestVerbs(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterHandlerFunc("status", "status", ok)
	d.RegisterHandlerFunc("branches", "branches", ok)

	ns := handler.NewBaseNamespaceHandler("stash")
	ns.Register("stash.pop", "stash.pop [index]", ok)
	d.RegisterNamespace("stash", ns)

	verbs := d.Verbs()
	want := []string{"branches", "stash.pop", "status"}
	if len(verbs) != len(want) {
		t.Fatalf("expected %d verbs, got %v", len(want), verbs)
	}
	for i, name := range want {
		if verbs[i].Name != name {
			t.Errorf("verb %d: expected %s, got %s", i, name, verbs[i].Name)
		}
	}
	if verbs[1].Usage != "stash.pop [index]" {
		t.Errorf("unexpected usage %q", verbs[1].Usage)
	}
}

func TestPreDispatchHook(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterHandlerFunc("push", "", func(_ handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		return handler.Success().WithData("remote", ctx.GetDataString("remote"))
	})
	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(action *handler.Action, ctx *execctx.ExecutionContext) bool {
		ctx.SetData("remote", "fork")
		return true
	}))

	if r := d.Dispatch(context.Background(), "push", nil); r.GetDataString("remote") != "fork" {
		t.Errorf("expected hook data to reach handler, got %q", r.GetDataString("remote"))
	}
}

func TestPreDispatchHookCancel(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	called := false
	d.RegisterHandlerFunc("push", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		called = true
		return handler.Success()
	})
	d.RegisterPreHook(dispatcher.PreDispatchFunc(func(*handler.Action, *execctx.ExecutionContext) bool {
		return false
	}))

	result := d.Dispatch(context.Background(), "push", nil)
	if called {
		t.Error("expected handler not to run")
	}
	if result.Status != handler.StatusCancelled || !errors.Is(result.Error, dispatcher.ErrActionCancelled) {
		t.Errorf("expected cancelled result, got %v (%v)", result.Status, result.Error)
	}
}

func TestPostDispatchHook(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterHandlerFunc("status", "", ok)
	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(_ *handler.Action, _ *execctx.ExecutionContext, r *handler.Result) {
		*r = r.WithMessage("observed")
	}))

	if r := d.Dispatch(context.Background(), "status", nil); r.Message != "observed" {
		t.Errorf("expected post hook to modify result, got %q", r.Message)
	}
}

func TestDryRunHook(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterPreHook(dispatcher.DryRunHook{})
	d.RegisterHandlerFunc("push", "", func(_ handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		return handler.Success().WithData("dry", ctx.DryRun)
	})

	if r := d.Dispatch(context.Background(), "push", []string{"--dry-run"}); !r.GetDataBool("dry") {
		t.Error("expected dry run to be set")
	}
	if r := d.Dispatch(context.Background(), "push", nil); r.GetDataBool("dry") {
		t.Error("expected dry run to be unset")
	}
}

func TestPanicRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterHandlerFunc("boom", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		panic("kaboom")
	})

	result := d.Dispatch(context.Background(), "boom", nil)
	if !errors.Is(result.Error, dispatcher.ErrPanic) {
		t.Errorf("expected ErrPanic, got %v", result.Error)
	}
	if d.Metrics().Snapshot().TotalPanics != 1 {
		t.Error("expected panic to be counted")
	}
}

func TestNoPanicRecovery(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithPanicRecovery(false))
	d.RegisterHandlerFunc("boom", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		panic("kaboom")
	})

	defer func() {
		if recover() == nil {
			t.Error("expected panic to propagate")
		}
	}()
	d.Dispatch(context.Background(), "boom", nil)
}

func TestDispatchTimeout(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithTimeout(20 * time.Millisecond))
	d.RegisterHandlerFunc("slow", "", func(_ handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		<-ctx.Context.Done()
		return handler.Error(ctx.Context.Err())
	})

	result := d.Dispatch(context.Background(), "slow", nil)
	if !errors.Is(result.Error, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", result.Error)
	}
}

func TestDispatchAsync(t *testing.T) {
	d := dispatcher.NewWithDefaults()
	d.RegisterHandlerFunc("status", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		return handler.SuccessWithMessage("clean")
	})

	sched := make(chanScheduler, 1)
	var got atomic.Value
	d.DispatchAsync(context.Background(), sched, "status", nil, func(r handler.Result) {
		got.Store(r.Message)
	})

	select {
	case fn := <-sched:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async result")
	}
	if got.Load() != "clean" {
		t.Errorf("expected clean, got %v", got.Load())
	}
}

func TestDispatchLatestDropsSuperseded(t *testing.T) {
	d := dispatcher.NewWithDefaults()

	release := make(chan struct{})
	var calls atomic.Int32
	d.RegisterHandlerFunc("status", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		n := calls.Add(1)
		if n == 1 {
			<-release
		}
		return handler.Success().WithData("n", int(n))
	})

	sched := make(chanScheduler, 2)
	var delivered []int
	deliver := func(r handler.Result) { delivered = append(delivered, r.GetDataInt("n")) }

	d.DispatchLatest(context.Background(), sched, "status", nil, deliver)
	for calls.Load() < 1 {
		time.Sleep(time.Millisecond)
	}
	d.DispatchLatest(context.Background(), sched, "status", nil, deliver)

	// The second dispatch finishes first; then let the first one finish.
	(<-sched)()
	close(release)
	(<-sched)()

	if len(delivered) != 1 || delivered[0] != 2 {
		t.Errorf("expected only the latest result, got %v", delivered)
	}
}

func TestMetricsRecording(t *testing.T) {
	d := dispatcher.New(dispatcher.DefaultConfig().WithMetrics())
	d.RegisterHandlerFunc("status", "", ok)
	d.RegisterHandlerFunc("fail", "", func(handler.Action, *execctx.ExecutionContext) handler.Result {
		return handler.Errorf("nope")
	})

	for i := 0; i < 3; i++ {
		d.Dispatch(context.Background(), "status", nil)
	}
	d.Dispatch(context.Background(), "fail", nil)

	m := d.Metrics()
	snap := m.Snapshot()
	if snap.TotalDispatches != 4 || snap.TotalErrors != 1 || snap.VerbCount != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if stats := m.VerbStats("status"); stats == nil || stats.DispatchCount != 3 {
		t.Errorf("unexpected status stats %+v", stats)
	}
	if top := m.TopVerbs(1); len(top) != 1 || top[0].Name != "status" {
		t.Errorf("unexpected top verbs %+v", top)
	}
	if m.VerbStats("missing") != nil {
		t.Error("expected nil stats for unknown verb")
	}

	m.Reset()
	if m.Snapshot().TotalDispatches != 0 {
		t.Error("expected reset to clear counters")
	}
}
