package gitops

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
)

// Verb names.
const (
	VerbStatus    = "status"
	VerbSummary   = "summary"
	VerbDiff      = "diff"
	VerbBranches  = "branches"
	VerbGraph     = "graph"
	VerbLog       = "log"
	VerbReflog    = "reflog"
	VerbBlame     = "blame"
	VerbTags      = "tags"
	VerbWorktrees = "worktrees"
	VerbRemotes   = "remotes"
	VerbTracking  = "tracking"
	VerbPRs       = "prs"
	VerbConflicts = "conflicts"

	VerbSwitch       = "switch"
	VerbBranchCreate = "branch.create"
	VerbBranchDelete = "branch.delete"
	VerbTagCreate    = "tag.create"
	VerbStage        = "stage"
	VerbUnstage      = "unstage"
	VerbCommit       = "commit"
	VerbApply        = "apply"
	VerbBisect       = "bisect"

	VerbPush  = "push"
	VerbFetch = "fetch"
	VerbPull  = "pull"

	VerbMerge              = "merge"
	VerbMergeAbort         = "merge.abort"
	VerbRebase             = "rebase"
	VerbRebaseAbort        = "rebase.abort"
	VerbRebaseContinue     = "rebase.continue"
	VerbRebaseTodo         = "rebase.todo"
	VerbRebaseInteractive  = "rebase.interactive"
	VerbCherryPick         = "cherry-pick"
	VerbCherryPickAbort    = "cherry-pick.abort"
	VerbCherryPickContinue = "cherry-pick.continue"
	VerbResolve            = "resolve"
	VerbResolveInteractive = "resolve.interactive"
)

// Register installs every git verb on d.
func Register(d *dispatcher.Dispatcher) {
	for _, v := range queryVerbs() {
		d.RegisterHandlerFunc(v.name, v.usage, withRepo(v.fn))
	}
	for _, v := range mutationVerbs() {
		d.RegisterHandlerFunc(v.name, v.usage, mutating(v.fn))
	}
	d.RegisterHandlerFunc(VerbPush, pushUsage, withRepo(push))
	for _, v := range integrationVerbs() {
		d.RegisterHandlerFunc(v.name, v.usage, mutating(v.fn))
	}
	d.RegisterNamespace(stashNamespace, newStashHandler())
}

// repoFunc is a handler that has a validated repository.
type repoFunc func(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result

type verb struct {
	name  string
	usage string
	fn    repoFunc
}

func withRepo(fn repoFunc) func(handler.Action, *execctx.ExecutionContext) handler.Result {
	return func(action handler.Action, ctx *execctx.ExecutionContext) handler.Result {
		if err := ctx.Validate(); err != nil {
			return handler.Error(fmt.Errorf("%s: %w", action.Name, err))
		}
		return fn(action, ctx, ctx.Repo)
	}
}

// mutating marks the result so post hooks skip staleness checks, and
// short-circuits dry runs.
func mutating(fn repoFunc) func(handler.Action, *execctx.ExecutionContext) handler.Result {
	return withRepo(func(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
		if ctx.DryRun {
			return dryRun(action)
		}
		return fn(action, ctx, repo).WithData("mutated", true)
	})
}

func dryRun(action handler.Action) handler.Result {
	line := strings.TrimSpace(action.Name + " " + strings.Join(action.Args.Positional, " "))
	return handler.NoOpWithMessage("dry run: " + line).WithData("dryRun", true)
}

// failure maps err to a result and surfaces conflicted paths and the CLI
// output so hosts can show them without unwrapping.
func failure(err error) handler.Result {
	r := handler.FromError(err, git.ErrCancelled)
	if paths := git.Conflicts(err); len(paths) > 0 {
		lines := make([]string, 0, len(paths)+1)
		lines = append(lines, "Conflicts:")
		for _, p := range paths {
			lines = append(lines, "  "+p)
		}
		r = r.WithData("conflicts", paths).WithLines(lines...)
	}
	if out := git.Output(err); out != "" {
		r = r.WithData("output", out)
	}
	return r
}

// index parses a 1-based or 0-based integer argument.
func index(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", dispatcher.ErrInvalidAction, s)
	}
	return n, nil
}

func outputLines(out string) []string {
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
