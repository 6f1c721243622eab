package git

import (
	"context"
	"fmt"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// Remotes returns the configured remotes.
func (r *Repository) Remotes(ctx context.Context) ([]parse.RemoteEntry, error) {
	return cached(r, "remotes", func() ([]parse.RemoteEntry, error) {
		out, err := r.output(ctx, "remote", "-v")
		if err != nil {
			return nil, err
		}
		return parse.Remotes(out), nil
	})
}

// PushOptions configures push behavior.
type PushOptions struct {
	// Remote is the remote to push to. Empty pushes to the configured upstream.
	Remote string

	// RefSpec is the refspec to push.
	RefSpec string

	// ForceWithLease is a safer force push.
	ForceWithLease bool

	// Tags pushes tags.
	Tags bool

	// DryRun performs a dry run.
	DryRun bool
}

func (o PushOptions) flags() []string {
	var args []string
	if o.ForceWithLease {
		args = append(args, "--force-with-lease")
	}
	if o.Tags {
		args = append(args, "--tags")
	}
	if o.DryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// PushResult reports a successful push.
type PushResult struct {
	Output string

	// Branch is set when the push negotiated a new upstream.
	Branch string

	// SetUpstream reports whether `push -u` was needed.
	SetUpstream bool
}

// Push pushes and, when git reports a missing upstream, offers to set
// one. The sequence is:
//
//  1. push; success ends the operation.
//  2. on failure, check the output against the upstream matcher; any
//     other failure is returned verbatim.
//  3. resolve the current branch; a detached HEAD fails with
//     ErrDetachedHead without prompting.
//  4. confirm with the user; declining returns ErrCancelled.
//  5. push -u <remote> <branch>.
func (r *Repository) Push(ctx context.Context, opts PushOptions, prompter Prompter) (PushResult, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := append([]string{"push"}, opts.flags()...)
	if opts.Remote != "" {
		args = append(args, opts.Remote)
		if opts.RefSpec != "" {
			args = append(args, opts.RefSpec)
		}
	}

	res, err := r.exec(ctx, process.Options{}, args...)
	if err != nil {
		return PushResult{}, err
	}
	if res.Success() {
		r.mutated("git.push.completed", map[string]any{"remote": opts.Remote})
		return PushResult{Output: CombinedOutput(res)}, nil
	}
	if !r.matcher.Match(fullOutput(res)) {
		return PushResult{}, commandError(res, nil)
	}

	branch, err := r.CurrentBranchName(ctx)
	if err != nil {
		return PushResult{}, err
	}
	if isDetached(branch) {
		return PushResult{}, commandError(res, ErrDetachedHead)
	}

	remote := opts.Remote
	if remote == "" {
		remote = r.pushRemote
	}

	if prompter == nil {
		return PushResult{}, commandError(res, ErrNoUpstream)
	}
	msg := fmt.Sprintf("Branch %q has no upstream. Push and track %s/%s?", branch, remote, branch)
	if ok, _ := prompter.Confirm(ctx, msg, []string{"Push", "Cancel"}); !ok {
		return PushResult{}, ErrCancelled
	}

	retry := append([]string{"push"}, opts.flags()...)
	retry = append(retry, "-u", remote, branch)
	res, err = r.exec(ctx, process.Options{}, retry...)
	if err != nil {
		return PushResult{}, err
	}
	if !res.Success() {
		return PushResult{}, commandError(res, nil)
	}

	r.logger.Info().Str("branch", branch).Str("remote", remote).Msg("upstream set")
	r.mutated("git.push.completed", map[string]any{
		"remote":      remote,
		"branch":      branch,
		"setUpstream": true,
	})
	return PushResult{Output: CombinedOutput(res), Branch: branch, SetUpstream: true}, nil
}

// FetchOptions configures fetch behavior.
type FetchOptions struct {
	// Remote is the remote to fetch from.
	Remote string

	// All fetches from all remotes.
	All bool

	// Prune removes remote-tracking references that no longer exist.
	Prune bool

	// Tags fetches tags.
	Tags bool
}

// Fetch fetches from a remote.
func (r *Repository) Fetch(ctx context.Context, opts FetchOptions) (string, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"fetch"}
	if opts.All {
		args = append(args, "--all")
	} else if opts.Remote != "" {
		args = append(args, opts.Remote)
	}
	if opts.Prune {
		args = append(args, "--prune")
	}
	if opts.Tags {
		args = append(args, "--tags")
	}

	res, err := r.exec(ctx, process.Options{}, args...)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return "", commandError(res, nil)
	}

	r.mutated("git.fetch.completed", map[string]any{
		"remote": opts.Remote,
		"all":    opts.All,
	})
	return CombinedOutput(res), nil
}

// PullOptions configures pull behavior.
type PullOptions struct {
	Remote string
	Branch string

	// Rebase rebases instead of merging.
	Rebase bool

	// FFOnly only allows fast-forward merges.
	FFOnly bool
}

// Pull fetches and integrates changes, detecting conflicts like Merge.
func (r *Repository) Pull(ctx context.Context, opts PullOptions) (IntegrationResult, error) {
	args := []string{"pull"}
	if opts.Rebase {
		args = append(args, "--rebase")
	}
	if opts.FFOnly {
		args = append(args, "--ff-only")
	}
	if opts.Remote != "" {
		args = append(args, opts.Remote)
		if opts.Branch != "" {
			args = append(args, opts.Branch)
		}
	}
	return r.integrate(ctx, "pull", process.Options{}, args, mergeOutcome)
}
