package gitops

import (
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
)

const pushUsage = "push [remote] [refspec] [--force-with-lease] [--tags] [--dry-run]"

// push is the one mutation that handles dry runs itself: git reports
// what it would push.
func push(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	opts := git.PushOptions{
		Remote:         action.Args.Arg(0),
		RefSpec:        action.Args.Arg(1),
		ForceWithLease: action.Args.Bool("force-with-lease"),
		Tags:           action.Args.Bool("tags"),
		DryRun:         ctx.DryRun,
	}

	res, err := repo.Push(ctx.Context, opts, ctx.Prompter)
	if err != nil {
		return failure(err).WithData("mutated", true)
	}

	msg := "Pushed"
	if res.SetUpstream {
		msg = "Pushed and set upstream for " + res.Branch
	}
	return handler.SuccessWithData("push", res).
		WithData("mutated", true).
		WithMessage(msg).
		WithLines(outputLines(res.Output)...)
}

func fetch(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	out, err := repo.Fetch(ctx.Context, git.FetchOptions{
		Remote: action.Args.Arg(0),
		All:    action.Args.Bool("all"),
		Prune:  action.Args.Bool("prune"),
		Tags:   action.Args.Bool("tags"),
	})
	if err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Fetched").WithLines(outputLines(out)...)
}

func pull(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	res, err := repo.Pull(ctx.Context, git.PullOptions{
		Remote: action.Args.Arg(0),
		Branch: action.Args.Arg(1),
		Rebase: action.Args.Bool("rebase"),
		FFOnly: action.Args.Bool("ff-only"),
	})
	if err != nil {
		return failure(err)
	}
	return integrationResult(res)
}
