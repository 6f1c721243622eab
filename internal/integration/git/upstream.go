package git

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/process"
)

// Tracking describes the current branch relative to its upstream.
type Tracking struct {
	// Branch is the current branch; empty when detached.
	Branch string

	Detached bool

	// Upstream is the tracking ref, e.g. "origin/main".
	Upstream string

	HasUpstream bool

	Ahead  int
	Behind int
}

// CurrentBranchName runs `git rev-parse --abbrev-ref HEAD`. A detached
// HEAD yields "HEAD".
func (r *Repository) CurrentBranchName(ctx context.Context) (string, error) {
	out, err := r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func isDetached(branch string) bool {
	return branch == "" || branch == "HEAD"
}

// Upstream returns the upstream of the current branch, or ErrNoUpstream.
func (r *Repository) Upstream(ctx context.Context) (string, error) {
	res, err := r.exec(ctx, process.Options{}, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return "", err
	}
	if !res.Success() {
		if r.matcher.Match(fullOutput(res)) {
			return "", commandError(res, ErrNoUpstream)
		}
		return "", commandError(res, nil)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Tracking computes ahead and behind counts. A detached HEAD reports
// zero without error; a branch without upstream reports HasUpstream false.
func (r *Repository) Tracking(ctx context.Context) (Tracking, error) {
	branch, err := r.CurrentBranchName(ctx)
	if err != nil {
		return Tracking{}, err
	}
	if isDetached(branch) {
		return Tracking{Detached: true}, nil
	}

	t := Tracking{Branch: branch}
	upstream, err := r.Upstream(ctx)
	if err != nil {
		if errors.Is(err, ErrNoUpstream) {
			return t, nil
		}
		return t, err
	}
	t.Upstream = upstream
	t.HasUpstream = true

	if t.Ahead, err = r.revCount(ctx, "@{upstream}..HEAD"); err != nil {
		return t, err
	}
	if t.Behind, err = r.revCount(ctx, "HEAD..@{upstream}"); err != nil {
		return t, err
	}
	return t, nil
}

func (r *Repository) revCount(ctx context.Context, rng string) (int, error) {
	out, err := r.output(ctx, "rev-list", "--count", rng)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, &CommandError{Args: []string{r.facade.GitPath(), "rev-list", "--count", rng}, Output: out, Err: err}
	}
	return n, nil
}
