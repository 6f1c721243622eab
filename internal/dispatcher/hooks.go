package dispatcher

import (
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

// PreDispatchHook is called before a verb is dispatched.
// Returning false cancels the dispatch.
type PreDispatchHook interface {
	// PreDispatch may modify the action or context.
	PreDispatch(action *handler.Action, ctx *execctx.ExecutionContext) bool
}

// PostDispatchHook is called after a verb is dispatched.
type PostDispatchHook interface {
	// PostDispatch may inspect or modify the result.
	PostDispatch(action *handler.Action, ctx *execctx.ExecutionContext, result *handler.Result)
}

// PreDispatchFunc is a function adapter for PreDispatchHook.
type PreDispatchFunc func(action *handler.Action, ctx *execctx.ExecutionContext) bool

// PreDispatch implements PreDispatchHook.
func (f PreDispatchFunc) PreDispatch(action *handler.Action, ctx *execctx.ExecutionContext) bool {
	return f(action, ctx)
}

// PostDispatchFunc is a function adapter for PostDispatchHook.
type PostDispatchFunc func(action *handler.Action, ctx *execctx.ExecutionContext, result *handler.Result)

// PostDispatch implements PostDispatchHook.
func (f PostDispatchFunc) PostDispatch(action *handler.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	f(action, ctx, result)
}

// DryRunHook turns on dry run mode for every dispatch that carries the
// --dry-run option.
type DryRunHook struct{}

// PreDispatch implements PreDispatchHook.
func (DryRunHook) PreDispatch(action *handler.Action, ctx *execctx.ExecutionContext) bool {
	if action.Args.Bool("dry-run") {
		ctx.DryRun = true
	}
	return true
}

// StaleResultHook marks query results computed across a repository
// change, so asynchronous consumers can refresh instead of rendering them.
type StaleResultHook struct{}

// PostDispatch implements PostDispatchHook.
func (StaleResultHook) PostDispatch(_ *handler.Action, ctx *execctx.ExecutionContext, result *handler.Result) {
	if result.IsOK() && ctx.IsStale() && !result.GetDataBool("mutated") {
		*result = result.WithData("stale", true)
	}
}
