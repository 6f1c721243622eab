package git

import (
	"context"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// Blame runs `git blame --line-porcelain [-- path]`.
func (r *Repository) Blame(ctx context.Context, path string) ([]parse.BlameLine, error) {
	args := []string{"blame", "--line-porcelain"}
	if path != "" {
		args = append(args, "--", path)
	}
	return cached(r, "blame\x00"+path, func() ([]parse.BlameLine, error) {
		out, err := r.output(ctx, args...)
		if err != nil {
			return nil, err
		}
		return parse.Blame(out), nil
	})
}

// BlameLine returns the attribution of one 1-based line of path.
func (r *Repository) BlameLine(ctx context.Context, path string, line int) (parse.BlameLine, bool, error) {
	lines, err := r.Blame(ctx, path)
	if err != nil {
		return parse.BlameLine{}, false, err
	}
	for _, l := range lines {
		if l.FinalLine == line {
			return l, true, nil
		}
	}
	return parse.BlameLine{}, false, nil
}
