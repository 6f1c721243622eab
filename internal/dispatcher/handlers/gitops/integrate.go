package gitops

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

func integrationVerbs() []verb {
	return []verb{
		{VerbMerge, "merge <branch> [--no-ff] [--ff-only] [--squash] [--message=<msg>]", merge},
		{VerbMergeAbort, "merge.abort", simple((*git.Repository).MergeAbort)},
		{VerbRebase, "rebase <onto>", rebase},
		{VerbRebaseAbort, "rebase.abort", simple((*git.Repository).RebaseAbort)},
		{VerbRebaseContinue, "rebase.continue", simple((*git.Repository).RebaseContinue)},
		{VerbRebaseInteractive, "rebase.interactive <base> [--action=pick|reword|edit|squash|fixup|drop]", rebaseInteractive},
		{VerbCherryPick, "cherry-pick <commit>...", cherryPick},
		{VerbCherryPickAbort, "cherry-pick.abort", simple((*git.Repository).CherryPickAbort)},
		{VerbCherryPickContinue, "cherry-pick.continue", simple((*git.Repository).CherryPickContinue)},
		{VerbResolve, "resolve <path> <hunk> <local|base|remote|both|edit> [--text=<replacement>]", resolve},
		{VerbResolveInteractive, "resolve.interactive <path> [hunk]", resolveInteractive},
	}
}

func integrationResult(res git.IntegrationResult) handler.Result {
	r := handler.SuccessWithData("outcome", string(res.Outcome)).WithLines(outputLines(res.Output)...)
	switch res.Outcome {
	case git.OutcomeUpToDate:
		return r.WithMessage("Already up to date")
	case git.OutcomeFastForward:
		return r.WithMessage("Fast-forwarded")
	case git.OutcomeMergeCommit:
		return r.WithMessage("Merged")
	case git.OutcomeRebased:
		return r.WithMessage("Rebased")
	case git.OutcomePicked:
		return r.WithMessage("Picked")
	case git.OutcomeAborted:
		return r.WithMessage("Aborted")
	}
	return r.WithMessage("Done")
}

// simple adapts an argument-less operation.
func simple(op func(*git.Repository, context.Context) (git.IntegrationResult, error)) repoFunc {
	return func(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
		res, err := op(repo, ctx.Context)
		if err != nil {
			return failure(err)
		}
		return integrationResult(res)
	}
}

func merge(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "merge <branch>"); err != nil {
		return handler.Error(err)
	}
	res, err := repo.Merge(ctx.Context, action.Args.Arg(0), git.MergeOptions{
		NoFF:    action.Args.Bool("no-ff"),
		FFOnly:  action.Args.Bool("ff-only"),
		Squash:  action.Args.Bool("squash"),
		Message: action.Args.String("message", ""),
	})
	if err != nil {
		return failure(err)
	}
	return integrationResult(res)
}

func rebase(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "rebase <onto>"); err != nil {
		return handler.Error(err)
	}
	res, err := repo.Rebase(ctx.Context, action.Args.Arg(0))
	if err != nil {
		return failure(err)
	}
	return integrationResult(res)
}

// rebaseInteractive rewrites base..HEAD. The todo list comes from the
// data key "todo" when a host edited it, otherwise every commit gets
// --action.
func rebaseInteractive(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "rebase.interactive <base>"); err != nil {
		return handler.Error(err)
	}
	base := action.Args.Arg(0)

	var todo []string
	if v, ok := ctx.GetData("todo"); ok {
		todo, _ = v.([]string)
	}
	if len(todo) == 0 {
		act := action.Args.String("action", "pick")
		if !parse.IsRebaseAction(act) {
			return handler.Errorf("%s: unknown rebase action %q", action.Name, act)
		}
		var err error
		if todo, err = repo.RebaseTodo(ctx.Context, base, act); err != nil {
			return failure(err)
		}
	}
	if len(todo) == 0 {
		return handler.NoOpWithMessage("nothing to rebase")
	}

	res, err := repo.RebaseInteractive(ctx.Context, base, todo)
	if err != nil {
		return failure(err)
	}
	return integrationResult(res).WithData("todo", todo)
}

func rebaseTodo(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "rebase.todo <base> [--action=pick]"); err != nil {
		return handler.Error(err)
	}
	act := action.Args.String("action", "pick")
	if !parse.IsRebaseAction(act) {
		return handler.Errorf("%s: unknown rebase action %q", action.Name, act)
	}
	todo, err := repo.RebaseTodo(ctx.Context, action.Args.Arg(0), act)
	if err != nil {
		return failure(err)
	}
	return handler.SuccessWithData("todo", todo).WithLines(todo...)
}

func cherryPick(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "cherry-pick <commit>..."); err != nil {
		return handler.Error(err)
	}
	res, err := repo.CherryPick(ctx.Context, action.Args.Positional...)
	if err != nil {
		return failure(err)
	}
	return integrationResult(res)
}

func resolve(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	const usage = "resolve <path> <hunk> <local|base|remote|both|edit>"
	if err := dispatcher.RequireArgs(action, 3, usage); err != nil {
		return handler.Error(err)
	}
	path := action.Args.Arg(0)
	n, err := index(action.Args.Arg(1), 1)
	if err != nil {
		return handler.Error(err)
	}

	var lines []string
	if text := action.Args.String("text", ""); text != "" {
		lines = strings.Split(text, "\n")
	}
	res, ok := parse.ParseResolution(action.Args.Arg(2), lines)
	if !ok {
		return handler.Error(fmt.Errorf("%w: unknown resolution %q; %s", dispatcher.ErrInvalidAction, action.Args.Arg(2), usage))
	}

	remaining, err := repo.ResolveConflict(path, n, res)
	if err != nil {
		return failure(err)
	}
	return hunksResult(path, remaining)
}

func resolveInteractive(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "resolve.interactive <path> [hunk]"); err != nil {
		return handler.Error(err)
	}
	if err := ctx.ValidateInteractive(); err != nil {
		return handler.Error(err)
	}
	path := action.Args.Arg(0)
	n, err := index(action.Args.Arg(1), 1)
	if err != nil {
		return handler.Error(err)
	}

	remaining, err := repo.ResolveConflictInteractive(ctx.Context, path, n, ctx.Prompter)
	if err != nil {
		return failure(err)
	}
	return hunksResult(path, remaining)
}
