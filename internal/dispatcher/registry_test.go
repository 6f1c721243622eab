package dispatcher_test

import (
	"testing"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := dispatcher.NewRegistry()
	registry.Register("status", handler.NewHandlerFunc(ok))

	if registry.Get("status") == nil {
		t.Fatal("expected non-nil handler")
	}
	if registry.Get("missing") != nil {
		t.Error("expected nil for missing verb")
	}
	if !registry.Has("status") || registry.Has("missing") {
		t.Error("unexpected Has results")
	}
}

func TestRegistryPriority(t *testing.T) {
	registry := dispatcher.NewRegistry()

	mk := func(msg string, prio int) handler.Handler {
		return handler.NewHandlerFuncWithPriority(func(handler.Action, *execctx.ExecutionContext) handler.Result {
			return handler.SuccessWithMessage(msg)
		}, prio)
	}
	registry.Register("push", mk("low", 1))
	registry.Register("push", mk("high", 10))
	registry.Register("push", mk("also-high", 10))

	got := registry.Get("push").Handle(handler.Action{}, execctx.New(nil))
	if got.Message != "high" {
		t.Errorf("expected highest priority handler, got %q", got.Message)
	}
	if n := len(registry.GetAll("push")); n != 3 {
		t.Errorf("expected 3 handlers, got %d", n)
	}
}

func TestRegistryUnregister(t *testing.T) {
	registry := dispatcher.NewRegistry()
	registry.Register("status", handler.NewHandlerFunc(ok))
	registry.SetUsage("status", "status")
	registry.Unregister("status")

	if registry.Has("status") {
		t.Error("expected verb to be removed")
	}
	if registry.Usage("status") != "" {
		t.Error("expected usage to be removed")
	}
}

func TestRegistryList(t *testing.T) {
	registry := dispatcher.NewRegistry()
	for _, v := range []string{"tags", "blame", "status"} {
		registry.Register(v, handler.NewHandlerFunc(ok))
	}

	list := registry.List()
	want := []string{"blame", "status", "tags"}
	if len(list) != len(want) {
		t.Fatalf("expected %v, got %v", want, list)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, list[i])
		}
	}
	if registry.Count() != 3 {
		t.Errorf("expected count 3, got %d", registry.Count())
	}
}
