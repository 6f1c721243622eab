package git

import (
	"context"
	"strconv"
	"strings"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

// Status returns `git status --porcelain=v1` entries.
func (r *Repository) Status(ctx context.Context) ([]parse.StatusEntry, error) {
	return cached(r, "status", func() ([]parse.StatusEntry, error) {
		out, err := r.output(ctx, "status", "--porcelain=v1")
		if err != nil {
			return nil, err
		}
		return parse.Status(out), nil
	})
}

// StatusGroups returns status entries bucketed for display.
func (r *Repository) StatusGroups(ctx context.Context) (parse.StatusGroups, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return parse.StatusGroups{}, err
	}
	return parse.GroupStatus(entries), nil
}

// ConflictedPaths lists unmerged paths via
// `git diff --name-only --diff-filter=U`.
func (r *Repository) ConflictedPaths(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	return parse.NameOnly(out), nil
}

// StatusSummary provides a compact status representation.
type StatusSummary struct {
	// Branch is the current branch name; empty when detached.
	Branch string

	// IsDetached indicates detached HEAD state.
	IsDetached bool

	// Upstream is the tracking branch, e.g. "origin/main".
	Upstream string

	Ahead  int
	Behind int

	StagedCount    int
	UnstagedCount  int
	UntrackedCount int
	ConflictCount  int
}

// HasChanges reports any uncommitted change.
func (s StatusSummary) HasChanges() bool {
	return s.StagedCount+s.UnstagedCount+s.UntrackedCount+s.ConflictCount > 0
}

// Summary combines status counts with upstream tracking.
func (r *Repository) Summary(ctx context.Context) (StatusSummary, error) {
	entries, err := r.Status(ctx)
	if err != nil {
		return StatusSummary{}, err
	}
	tracking, err := r.Tracking(ctx)
	if err != nil {
		return StatusSummary{}, err
	}

	s := StatusSummary{
		Branch:     tracking.Branch,
		IsDetached: tracking.Detached,
		Upstream:   tracking.Upstream,
		Ahead:      tracking.Ahead,
		Behind:     tracking.Behind,
	}
	for _, e := range entries {
		switch {
		case e.Ignored:
		case e.Untracked:
			s.UntrackedCount++
		case e.IsConflicted():
			s.ConflictCount++
		default:
			if e.Staged {
				s.StagedCount++
			}
			if e.Unstaged {
				s.UnstagedCount++
			}
		}
	}
	return s, nil
}

// FormatBranch returns a formatted branch string for display.
// Examples: "main", "main ↑2", "main ↓1", "main ↑2↓1", "(detached)"
func (s StatusSummary) FormatBranch() string {
	if s.IsDetached {
		return "(detached)"
	}

	result := s.Branch
	switch {
	case s.Ahead > 0 && s.Behind > 0:
		result += " ↑" + strconv.Itoa(s.Ahead) + "↓" + strconv.Itoa(s.Behind)
	case s.Ahead > 0:
		result += " ↑" + strconv.Itoa(s.Ahead)
	case s.Behind > 0:
		result += " ↓" + strconv.Itoa(s.Behind)
	}
	return result
}

// FormatChanges returns a compact change count, e.g. "+2 ~3 ?1 !1".
func (s StatusSummary) FormatChanges() string {
	var parts []string
	if s.StagedCount > 0 {
		parts = append(parts, "+"+strconv.Itoa(s.StagedCount))
	}
	if s.UnstagedCount > 0 {
		parts = append(parts, "~"+strconv.Itoa(s.UnstagedCount))
	}
	if s.UntrackedCount > 0 {
		parts = append(parts, "?"+strconv.Itoa(s.UntrackedCount))
	}
	if s.ConflictCount > 0 {
		parts = append(parts, "!"+strconv.Itoa(s.ConflictCount))
	}
	return strings.Join(parts, " ")
}
