package gitops

import (
	"fmt"
	"os"
	"strings"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
)

func mutationVerbs() []verb {
	return []verb{
		{VerbSwitch, "switch <branch>", switchBranch},
		{VerbBranchCreate, "branch.create <name> [start-point]", createBranch},
		{VerbBranchDelete, "branch.delete <name> [--force]", deleteBranch},
		{VerbTagCreate, "tag.create <name> [--message=<msg>]", createTag},
		{VerbStage, "stage [paths...]", stage},
		{VerbUnstage, "unstage [paths...]", unstage},
		{VerbCommit, "commit --message=<msg> [--amend] [--allow-empty] [--signoff]", commit},
		{VerbApply, "apply <patch-file|-> [--cached]", apply},
		{VerbBisect, "bisect <start|good|bad|skip|reset> [rev]", bisect},
		{VerbFetch, "fetch [remote] [--all] [--prune] [--tags]", fetch},
		{VerbPull, "pull [remote] [branch] [--rebase] [--ff-only]", pull},
	}
}

func switchBranch(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "switch <branch>"); err != nil {
		return handler.Error(err)
	}
	name := action.Args.Arg(0)
	if err := repo.Switch(ctx.Context, name); err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Switched to " + name)
}

func createBranch(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "branch.create <name> [start-point]"); err != nil {
		return handler.Error(err)
	}
	name := action.Args.Arg(0)
	if err := repo.CreateBranch(ctx.Context, name, action.Args.Arg(1)); err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Switched to a new branch " + name)
}

func deleteBranch(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "branch.delete <name> [--force]"); err != nil {
		return handler.Error(err)
	}
	name := action.Args.Arg(0)
	if err := repo.DeleteBranch(ctx.Context, name, action.Args.Bool("force")); err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Deleted branch " + name)
}

func createTag(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "tag.create <name> [--message=<msg>]"); err != nil {
		return handler.Error(err)
	}
	name := action.Args.Arg(0)
	if err := repo.CreateTag(ctx.Context, name, action.Args.String("message", "")); err != nil {
		return failure(err)
	}
	return handler.SuccessWithMessage("Created tag " + name)
}

func stage(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	paths := action.Args.Positional
	if err := repo.Stage(ctx.Context, paths...); err != nil {
		return failure(err)
	}
	if len(paths) == 0 {
		return handler.SuccessWithMessage("Staged all changes")
	}
	return handler.SuccessWithData("staged", paths).
		WithMessage(fmt.Sprintf("Staged %d path(s)", len(paths)))
}

func unstage(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	paths := action.Args.Positional
	if err := repo.Unstage(ctx.Context, paths...); err != nil {
		return failure(err)
	}
	if len(paths) == 0 {
		return handler.SuccessWithMessage("Unstaged all changes")
	}
	return handler.SuccessWithData("unstaged", paths).
		WithMessage(fmt.Sprintf("Unstaged %d path(s)", len(paths)))
}

func commit(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	message := action.Args.String("message", strings.Join(action.Args.Positional, " "))
	opts := git.CommitOptions{
		Amend:      action.Args.Bool("amend"),
		AllowEmpty: action.Args.Bool("allow-empty"),
		SignOff:    action.Args.Bool("signoff"),
	}

	c, err := repo.Commit(ctx.Context, message, opts)
	if err != nil {
		return failure(err)
	}
	return handler.SuccessWithData("commit", c).
		WithData("hash", c.SHA).
		WithMessage("[" + c.ShortSHA + "] " + c.Summary)
}

// apply reads a patch from a file, or from the data key "patch" when the
// argument is "-".
func apply(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "apply <patch-file|-> [--cached]"); err != nil {
		return handler.Error(err)
	}

	var patch string
	if src := action.Args.Arg(0); src == "-" {
		patch = ctx.GetDataString("patch")
	} else {
		data, err := os.ReadFile(src)
		if err != nil {
			return handler.Error(err)
		}
		patch = string(data)
	}
	if strings.TrimSpace(patch) == "" {
		return handler.NoOpWithMessage("empty patch")
	}

	cached := action.Args.Bool("cached")
	if err := repo.ApplyPatch(ctx.Context, patch, cached); err != nil {
		return failure(err)
	}
	if cached {
		return handler.SuccessWithMessage("Patch applied to index")
	}
	return handler.SuccessWithMessage("Patch applied")
}

func bisect(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "bisect <start|good|bad|skip|reset> [rev]"); err != nil {
		return handler.Error(err)
	}
	res, err := repo.Bisect(ctx.Context, action.Args.Arg(0), action.Args.Arg(1))
	if err != nil {
		return failure(err)
	}
	r := handler.SuccessWithData("bisect", res).WithLines(outputLines(res.Output)...)
	if res.Done {
		r = r.WithMessage(res.FirstBad + " is the first bad commit")
	}
	return r
}
