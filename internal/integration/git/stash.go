package git

import (
	"context"
	"fmt"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Stashes lists stash entries, newest first.
func (r *Repository) Stashes(ctx context.Context) ([]parse.StashEntry, error) {
	return cached(r, "stashes", func() ([]parse.StashEntry, error) {
		out, err := r.output(ctx, "stash", "list")
		if err != nil {
			return nil, err
		}
		return parse.Stashes(out), nil
	})
}

// StashPush stashes local changes, including untracked files when asked.
func (r *Repository) StashPush(ctx context.Context, message string, includeUntracked bool) error {
	args := []string{"stash", "push"}
	if includeUntracked {
		args = append(args, "--include-untracked")
	}
	if message != "" {
		args = append(args, "-m", message)
	}
	return r.stash(ctx, "push", args)
}

// StashApply applies stash index without dropping it. Conflicts are
// reported like Merge.
func (r *Repository) StashApply(ctx context.Context, index int) error {
	return r.stash(ctx, "apply", []string{"stash", "apply", stashRef(index)})
}

// StashPop applies and drops stash index.
func (r *Repository) StashPop(ctx context.Context, index int) error {
	return r.stash(ctx, "pop", []string{"stash", "pop", stashRef(index)})
}

// StashDrop discards stash index.
func (r *Repository) StashDrop(ctx context.Context, index int) error {
	return r.stash(ctx, "drop", []string{"stash", "drop", stashRef(index)})
}

func stashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

func (r *Repository) stash(ctx context.Context, action string, args []string) error {
	_, err := r.integrate(ctx, "stash."+action, process.Options{}, args, fixedOutcome(OutcomeDone))
	return err
}
