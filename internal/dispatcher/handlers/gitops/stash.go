package gitops

import (
	"context"
	"fmt"

	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
)

const stashNamespace = "stash"

// Stash verb names.
const (
	VerbStashList  = "stash.list"
	VerbStashPush  = "stash.push"
	VerbStashApply = "stash.apply"
	VerbStashPop   = "stash.pop"
	VerbStashDrop  = "stash.drop"
)

// newStashHandler groups the stash verbs under one namespace.
func newStashHandler() *handler.BaseNamespaceHandler {
	h := handler.NewBaseNamespaceHandler(stashNamespace)
	h.Register(VerbStashList, "stash.list", withRepo(stashList))
	h.Register(VerbStashPush, "stash.push [--message=<msg>] [--include-untracked]", mutating(stashPush))
	h.Register(VerbStashApply, "stash.apply [index]", mutating(stashOp("Applied", (*git.Repository).StashApply)))
	h.Register(VerbStashPop, "stash.pop [index]", mutating(stashOp("Popped", (*git.Repository).StashPop)))
	h.Register(VerbStashDrop, "stash.drop [index]", mutating(stashOp("Dropped", (*git.Repository).StashDrop)))
	return h
}

func stashList(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	entries, err := repo.Stashes(ctx.Context)
	if err != nil {
		return failure(err)
	}
	if len(entries) == 0 {
		return handler.NoOpWithMessage("no stashes")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Ref + ": " + e.Description
	}
	return handler.SuccessWithData("stashes", entries).WithLines(lines...)
}

func stashPush(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	err := repo.StashPush(ctx.Context, action.Args.String("message", ""), action.Args.Bool("include-untracked"))
	if err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Saved working directory")
}

func stashOp(verb string, op func(*git.Repository, context.Context, int) error) repoFunc {
	return func(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
		n, err := index(action.Args.Arg(0), 0)
		if err != nil {
			return handler.Error(err)
		}
		if err := op(repo, ctx.Context, n); err != nil {
			return failure(err)
		}
		return handler.SuccessWithMessage(fmt.Sprintf("%s stash@{%d}", verb, n))
	}
}
