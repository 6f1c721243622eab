package git

import (
	"context"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// Worktrees lists working trees; the first entry is the main one.
func (r *Repository) Worktrees(ctx context.Context) ([]parse.WorktreeEntry, error) {
	return cached(r, "worktrees", func() ([]parse.WorktreeEntry, error) {
		out, err := r.output(ctx, "worktree", "list", "--porcelain")
		if err != nil {
			return nil, err
		}
		return parse.Worktrees(out), nil
	})
}

// Stage stages paths for commit. With no paths all changes are staged.
func (r *Repository) Stage(ctx context.Context, paths ...string) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"add", "-A"}
	if len(paths) > 0 {
		args = append([]string{"add", "--"}, paths...)
	}
	if _, err := r.output(ctx, args...); err != nil {
		return err
	}

	r.mutated("git.status.changed", map[string]any{
		"action": "stage",
		"paths":  paths,
	})
	return nil
}

// Unstage removes paths from the index. With no paths the whole index
// is reset. Before the first commit there is no HEAD to reset to, so
// entries are removed with rm --cached instead.
func (r *Repository) Unstage(ctx context.Context, paths ...string) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := append([]string{"reset", "-q", "HEAD", "--"}, paths...)
	if _, err := r.output(ctx, args...); err != nil {
		if _, headErr := r.output(ctx, "rev-parse", "--verify", "-q", "HEAD"); headErr == nil {
			return err
		}
		rm := []string{"rm", "--cached", "-r", "-q", "--"}
		if len(paths) == 0 {
			rm = append(rm, ".")
		} else {
			rm = append(rm, paths...)
		}
		if _, rmErr := r.output(ctx, rm...); rmErr != nil {
			return rmErr
		}
	}

	r.mutated("git.status.changed", map[string]any{
		"action": "unstage",
		"paths":  paths,
	})
	return nil
}
