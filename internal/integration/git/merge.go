package git

import (
	"context"
	"os"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Outcome labels a successful merge, rebase or cherry-pick.
type Outcome string

const (
	OutcomeFastForward Outcome = "fast-forward"
	OutcomeUpToDate    Outcome = "up-to-date"
	OutcomeMergeCommit Outcome = "merge-commit"
	OutcomeRebased     Outcome = "rebased"
	OutcomePicked      Outcome = "picked"
	OutcomeAborted     Outcome = "aborted"
	OutcomeDone        Outcome = "done"
)

// IntegrationResult reports a successful history-changing operation.
type IntegrationResult struct {
	Outcome Outcome
	Output  string
}

// MergeOptions configures merge behavior.
type MergeOptions struct {
	// NoFF creates a merge commit even for fast-forward merges.
	NoFF bool

	// FFOnly only allows fast-forward merges.
	FFOnly bool

	// Squash squashes all commits into one.
	Squash bool

	// Message is the merge commit message.
	Message string
}

// Merge merges branch into the current branch.
func (r *Repository) Merge(ctx context.Context, branch string, opts MergeOptions) (IntegrationResult, error) {
	args := []string{"merge", "--no-edit"}
	if opts.NoFF {
		args = append(args, "--no-ff")
	}
	if opts.FFOnly {
		args = append(args, "--ff-only")
	}
	if opts.Squash {
		args = append(args, "--squash")
	}
	if opts.Message != "" {
		args = append(args, "-m", opts.Message)
	}
	args = append(args, branch)
	return r.integrate(ctx, "merge", process.Options{}, args, mergeOutcome)
}

// Rebase rebases the current branch onto upstream.
func (r *Repository) Rebase(ctx context.Context, onto string) (IntegrationResult, error) {
	return r.integrate(ctx, "rebase", process.Options{}, []string{"rebase", onto}, rebaseOutcome)
}

// CherryPick applies the given commits to the current branch.
func (r *Repository) CherryPick(ctx context.Context, commits ...string) (IntegrationResult, error) {
	args := append([]string{"cherry-pick"}, commits...)
	return r.integrate(ctx, "cherry-pick", process.Options{}, args, fixedOutcome(OutcomePicked))
}

// MergeAbort aborts an in-progress merge.
func (r *Repository) MergeAbort(ctx context.Context) (IntegrationResult, error) {
	return r.integrate(ctx, "merge", process.Options{}, []string{"merge", "--abort"}, fixedOutcome(OutcomeAborted))
}

// RebaseAbort aborts an in-progress rebase.
func (r *Repository) RebaseAbort(ctx context.Context) (IntegrationResult, error) {
	return r.integrate(ctx, "rebase", process.Options{}, []string{"rebase", "--abort"}, fixedOutcome(OutcomeAborted))
}

// RebaseContinue continues a paused rebase after conflicts are resolved.
// Commit messages are kept as they are.
func (r *Repository) RebaseContinue(ctx context.Context) (IntegrationResult, error) {
	opts := process.Options{Env: []string{"GIT_EDITOR=true"}}
	return r.integrate(ctx, "rebase", opts, []string{"rebase", "--continue"}, rebaseOutcome)
}

// CherryPickAbort aborts an in-progress cherry-pick.
func (r *Repository) CherryPickAbort(ctx context.Context) (IntegrationResult, error) {
	return r.integrate(ctx, "cherry-pick", process.Options{}, []string{"cherry-pick", "--abort"}, fixedOutcome(OutcomeAborted))
}

// CherryPickContinue continues a cherry-pick after conflicts are resolved.
func (r *Repository) CherryPickContinue(ctx context.Context) (IntegrationResult, error) {
	opts := process.Options{Env: []string{"GIT_EDITOR=true"}}
	return r.integrate(ctx, "cherry-pick", opts, []string{"cherry-pick", "--continue"}, fixedOutcome(OutcomePicked))
}

// RebaseTodo builds a todo list for the commits in base..HEAD, oldest
// first, every line using action.
func (r *Repository) RebaseTodo(ctx context.Context, base, action string) ([]string, error) {
	out, err := r.output(ctx, "log", "--reverse", "--format="+parse.LogFormat, base+"..HEAD")
	if err != nil {
		return nil, err
	}
	return parse.BuildRebaseTodo(parse.Commits(out), action), nil
}

// RebaseInteractive runs `git rebase -i base` with todo as the edited
// todo list. The list is handed to git through GIT_SEQUENCE_EDITOR, so no
// editor is opened.
func (r *Repository) RebaseInteractive(ctx context.Context, base string, todo []string) (IntegrationResult, error) {
	f, err := os.CreateTemp("", "gitpanel-todo-*")
	if err != nil {
		return IntegrationResult{}, &FileError{Op: "create", Path: os.TempDir(), Err: err}
	}
	defer os.Remove(f.Name())

	_, werr := f.WriteString(strings.Join(todo, "\n") + "\n")
	cerr := f.Close()
	if werr != nil {
		return IntegrationResult{}, &FileError{Op: "write", Path: f.Name(), Err: werr}
	}
	if cerr != nil {
		return IntegrationResult{}, &FileError{Op: "write", Path: f.Name(), Err: cerr}
	}

	opts := process.Options{Env: []string{
		"GIT_SEQUENCE_EDITOR=cp " + shellQuote(f.Name()),
		"GIT_EDITOR=true",
	}}
	return r.integrate(ctx, "rebase", opts, []string{"rebase", "-i", base}, rebaseOutcome)
}

// integrate runs a merge-like command. On failure it collects conflicted
// paths from CONFLICT lines, falling back to the unmerged-paths query
// when the output names none.
func (r *Repository) integrate(ctx context.Context, op string, opts process.Options, args []string, label func(string) Outcome) (IntegrationResult, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	res, err := r.exec(ctx, opts, args...)
	if err != nil {
		return IntegrationResult{}, err
	}
	defer r.Invalidate()

	out := CombinedOutput(res)
	if res.Success() {
		result := IntegrationResult{Outcome: label(fullOutput(res)), Output: out}
		r.publishEvent("git."+op+".completed", map[string]any{
			"outcome": string(result.Outcome),
		})
		return result, nil
	}

	conflicts := parse.ConflictPaths(fullOutput(res))
	if len(conflicts) == 0 {
		unmerged, qerr := r.ConflictedPaths(ctx)
		if qerr != nil {
			r.logger.Debug().Err(qerr).Msg("unmerged paths query failed")
		}
		conflicts = unmerged
	}

	if len(conflicts) == 0 {
		return IntegrationResult{}, commandError(res, nil)
	}

	r.publishEvent("git."+op+".conflict", map[string]any{"paths": conflicts})
	cerr := commandError(res, ErrConflict)
	cerr.Conflicts = conflicts
	return IntegrationResult{}, cerr
}

func mergeOutcome(output string) Outcome {
	switch {
	case parse.ContainsFold(output, "Already up to date"), parse.ContainsFold(output, "Already up-to-date"):
		return OutcomeUpToDate
	case parse.ContainsFold(output, "Fast-forward"):
		return OutcomeFastForward
	default:
		return OutcomeMergeCommit
	}
}

func rebaseOutcome(output string) Outcome {
	if parse.ContainsFold(output, "is up to date") {
		return OutcomeUpToDate
	}
	return OutcomeRebased
}

func fixedOutcome(o Outcome) func(string) Outcome {
	return func(string) Outcome { return o }
}

// shellQuote single-quotes s for the shell git runs editors through.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
