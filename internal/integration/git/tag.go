package git

import (
	"context"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// Tags lists tags, newest first.
func (r *Repository) Tags(ctx context.Context) ([]parse.TagEntry, error) {
	return cached(r, "tags", func() ([]parse.TagEntry, error) {
		out, err := r.output(ctx, "for-each-ref", "--sort=-creatordate",
			"--format=%(refname:short)\t%(objecttype)\t%(*objectname)\t%(subject)",
			"refs/tags")
		if err != nil {
			return nil, err
		}
		return parse.Tags(out), nil
	})
}

// CreateTag creates a tag at HEAD; a non-empty message makes it annotated.
func (r *Repository) CreateTag(ctx context.Context, name, message string) error {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	args := []string{"tag"}
	if message != "" {
		args = append(args, "-a", "-m", message)
	}
	args = append(args, name)
	if _, err := r.output(ctx, args...); err != nil {
		return err
	}
	r.mutated("git.tag.created", map[string]any{"name": name, "annotated": message != ""})
	return nil
}
