package git

import (
	"context"
	"fmt"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Branches lists local and remote-tracking branches.
func (r *Repository) Branches(ctx context.Context) ([]parse.BranchEntry, error) {
	return cached(r, "branches", func() ([]parse.BranchEntry, error) {
		out, err := r.output(ctx, "for-each-ref",
			"--format=%(HEAD)\t%(refname:short)\t%(refname)",
			"refs/heads", "refs/remotes")
		if err != nil {
			return nil, err
		}
		return parse.Branches(out), nil
	})
}

// FindBranch looks a branch up by short ref name, e.g. "main" or "origin/main".
func (r *Repository) FindBranch(ctx context.Context, name string) (parse.BranchEntry, error) {
	branches, err := r.Branches(ctx)
	if err != nil {
		return parse.BranchEntry{}, err
	}
	for _, b := range branches {
		if b.Name == name || b.Ref == name {
			return b, nil
		}
	}
	return parse.BranchEntry{}, fmt.Errorf("%w: %s", ErrBranchNotFound, name)
}

// switchAttempts returns the commands tried in order to switch to b.
func switchAttempts(b parse.BranchEntry) [][]string {
	if !b.IsRemote {
		return [][]string{
			{"switch", b.Name},
			{"checkout", b.Name},
		}
	}
	return [][]string{
		{"switch", b.ShortName},
		{"switch", "--track", b.Name},
		{"checkout", "-t", b.Name},
	}
}

// SwitchBranch checks out b. Local branches try switch then checkout.
// Remote branches try the existing local tracking branch, then create
// one with switch --track, then checkout -t. A remote's symbolic HEAD is
// rejected with ErrAmbiguousTarget.
func (r *Repository) SwitchBranch(ctx context.Context, b parse.BranchEntry) error {
	if b.IsRemote && b.ShortName == "HEAD" {
		return fmt.Errorf("%w: %s", ErrAmbiguousTarget, b.Name)
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	var last process.Result
	for i, args := range switchAttempts(b) {
		res, err := r.exec(ctx, process.Options{}, args...)
		if err != nil {
			return err
		}
		if res.Success() {
			r.mutated("git.branch.switched", map[string]any{
				"name":    b.Name,
				"attempt": i + 1,
			})
			return nil
		}
		r.logger.Debug().Strs("args", args).Str("output", CombinedOutput(res)).Msg("switch attempt failed")
		last = res
	}
	return commandError(last, nil)
}

// Switch resolves name against the branch list and switches to it.
// Unknown names are tried as local branches.
func (r *Repository) Switch(ctx context.Context, name string) error {
	b, err := r.FindBranch(ctx, name)
	if err != nil {
		b = parse.BranchEntry{Name: name, ShortName: name}
	}
	return r.SwitchBranch(ctx, b)
}

// CreateBranch creates name at startPoint (HEAD when empty) and switches to it.
func (r *Repository) CreateBranch(ctx context.Context, name, startPoint string) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"switch", "-c", name}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	if _, err := r.output(ctx, args...); err != nil {
		return err
	}

	r.mutated("git.branch.created", map[string]any{
		"name":       name,
		"startPoint": startPoint,
	})
	return nil
}

// DeleteBranch deletes a local branch.
func (r *Repository) DeleteBranch(ctx context.Context, name string, force bool) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := r.output(ctx, "branch", flag, name); err != nil {
		return err
	}

	r.mutated("git.branch.deleted", map[string]any{"name": name, "force": force})
	return nil
}
