package git

import (
	"context"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
	"github.com/dshills/gitpanel/internal/integration/process"
)

// DiffOptions configures a diff query.
type DiffOptions struct {
	// Staged compares the index against HEAD.
	Staged bool

	// Rev compares against a revision or range instead of the index.
	Rev string

	// Paths limits the diff.
	Paths []string
}

func (o DiffOptions) args() []string {
	args := []string{"diff", "--no-color"}
	if o.Staged {
		args = append(args, "--cached")
	}
	if o.Rev != "" {
		args = append(args, o.Rev)
	}
	if len(o.Paths) > 0 {
		args = append(args, "--")
		args = append(args, o.Paths...)
	}
	return args
}

// DiffResult is raw diff text with its parsed file headers.
type DiffResult struct {
	Text  string
	Files []parse.DiffFile
}

// Diff runs `git diff` and parses file and hunk headers.
func (r *Repository) Diff(ctx context.Context, opts DiffOptions) (DiffResult, error) {
	args := opts.args()
	return cached(r, strings.Join(args, "\x00"), func() (DiffResult, error) {
		out, err := r.output(ctx, args...)
		if err != nil {
			return DiffResult{}, err
		}
		return DiffResult{Text: out, Files: parse.Diff(out)}, nil
	})
}

// DiffMarkers runs `git diff` and maps each rendered line to source line numbers.
func (r *Repository) DiffMarkers(ctx context.Context, opts DiffOptions) ([]parse.LineMarker, error) {
	d, err := r.Diff(ctx, opts)
	if err != nil {
		return nil, err
	}
	return parse.DiffMarkers(d.Text), nil
}

// ApplyPatch feeds patch to `git apply` on stdin. With cached the patch
// is applied to the index only.
func (r *Repository) ApplyPatch(ctx context.Context, patch string, cached bool) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"apply"}
	if cached {
		args = append(args, "--cached")
	}
	args = append(args, "-")

	res, err := r.exec(ctx, process.Options{Stdin: []byte(patch)}, args...)
	if err != nil {
		return err
	}
	if !res.Success() {
		return commandError(res, nil)
	}

	r.mutated("git.patch.applied", map[string]any{"cached": cached})
	return nil
}
