package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// Graph returns the decorated branch graph,
// `git log --all --graph --oneline --decorate=short -n<limit>`.
func (r *Repository) Graph(ctx context.Context) ([]parse.GraphLine, error) {
	return cached(r, "graph", func() ([]parse.GraphLine, error) {
		out, err := r.output(ctx, "log", "--all", "--graph", "--oneline", "--decorate=short",
			"-n"+strconv.Itoa(r.graphLimit))
		if err != nil {
			return nil, err
		}
		return parse.Graph(out), nil
	})
}

// Log returns up to n commits of revRange (HEAD when empty), newest first.
func (r *Repository) Log(ctx context.Context, revRange string, n int) ([]parse.CommitLogEntry, error) {
	args := []string{"log", "--format=" + parse.LogFormat}
	if n > 0 {
		args = append(args, "-n"+strconv.Itoa(n))
	}
	if revRange != "" {
		args = append(args, revRange)
	}
	return cached(r, strings.Join(args, "\x00"), func() ([]parse.CommitLogEntry, error) {
		out, err := r.output(ctx, args...)
		if err != nil {
			return nil, err
		}
		return parse.Commits(out), nil
	})
}

// Reflog returns the last count HEAD reflog entries; zero uses the
// configured default.
func (r *Repository) Reflog(ctx context.Context, count int) ([]parse.ReflogEntry, error) {
	if count <= 0 {
		count = r.reflogCount
	}
	n := strconv.Itoa(count)
	return cached(r, "reflog\x00"+n, func() ([]parse.ReflogEntry, error) {
		out, err := r.output(ctx, "reflog", "show", "--format=%H\t%gd\t%gs", "-n", n)
		if err != nil {
			return nil, err
		}
		return parse.Reflog(out), nil
	})
}

// CommitOptions configures commit creation.
type CommitOptions struct {
	// Amend amends the previous commit.
	Amend bool

	// AllowEmpty allows creating an empty commit.
	AllowEmpty bool

	// SignOff adds a Signed-off-by line.
	SignOff bool
}

// Commit records the index with message and returns the new HEAD.
func (r *Repository) Commit(ctx context.Context, message string, opts CommitOptions) (parse.CommitLogEntry, error) {
	if strings.TrimSpace(message) == "" && !opts.Amend {
		return parse.CommitLogEntry{}, fmt.Errorf("%w: empty commit message", ErrCommandFailed)
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"commit"}
	if message != "" {
		args = append(args, "-m", message)
	} else {
		args = append(args, "--no-edit")
	}
	if opts.Amend {
		args = append(args, "--amend")
	}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if opts.SignOff {
		args = append(args, "--signoff")
	}
	if _, err := r.output(ctx, args...); err != nil {
		return parse.CommitLogEntry{}, err
	}

	out, err := r.output(ctx, "log", "-1", "--format="+parse.LogFormat)
	if err != nil {
		return parse.CommitLogEntry{}, err
	}
	commits := parse.Commits(out)
	if len(commits) == 0 {
		return parse.CommitLogEntry{}, &CommandError{Args: []string{"log", "-1"}, Output: out}
	}

	r.mutated("git.commit.created", map[string]any{
		"hash":    commits[0].SHA,
		"message": commits[0].Summary,
		"amend":   opts.Amend,
	})
	return commits[0], nil
}

// BisectResult is the state after a bisect step.
type BisectResult struct {
	Output string

	// FirstBad is the culprit once git has narrowed it down.
	FirstBad string
	Done     bool
}

// Bisect runs `git bisect <verdict> [rev]` where verdict is start, good,
// bad, skip or reset.
func (r *Repository) Bisect(ctx context.Context, verdict, rev string) (BisectResult, error) {
	switch verdict {
	case "start", "good", "bad", "skip", "reset", "new", "old":
	default:
		return BisectResult{}, fmt.Errorf("%w: unknown bisect verdict %q", ErrCommandFailed, verdict)
	}

	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"bisect", verdict}
	if rev != "" {
		args = append(args, rev)
	}
	out, err := r.output(ctx, args...)
	if err != nil {
		return BisectResult{}, err
	}

	result := BisectResult{Output: strings.TrimSpace(out)}
	for _, line := range strings.Split(out, "\n") {
		if sha, ok := strings.CutSuffix(strings.TrimSpace(line), " is the first bad commit"); ok {
			result.FirstBad = sha
			result.Done = true
			break
		}
	}
	r.mutated("git.bisect."+verdict, map[string]any{"done": result.Done})
	return result, nil
}
