package git

import (
	"context"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// PullRequests lists pull requests with gh. state is open, closed,
// merged or all; empty means open.
func (r *Repository) PullRequests(ctx context.Context, state string) ([]parse.PullRequest, error) {
	if state == "" {
		state = "open"
	}
	args := []string{"pr", "list", "--state", state, "--json", parse.PullRequestFields}

	return cached(r, "prs\x00"+state, func() ([]parse.PullRequest, error) {
		res, err := r.facade.Gh(ctx, args, process.Options{Dir: r.path}).Wait(ctx)
		if err != nil {
			return nil, err
		}
		if !res.Success() {
			return nil, commandError(res, nil)
		}
		return parse.PullRequests(res.Stdout), nil
	})
}
