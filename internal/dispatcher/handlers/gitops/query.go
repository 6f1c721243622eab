package gitops

import (
	"fmt"
	"strings"

	"github.com/dshills/gitpanel/internal/dispatcher"
	"github.com/dshills/gitpanel/internal/dispatcher/execctx"
	"github.com/dshills/gitpanel/internal/dispatcher/handler"
	"github.com/dshills/gitpanel/internal/integration/git"
	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

func queryVerbs() []verb {
	return []verb{
		{VerbStatus, "status", status},
		{VerbSummary, "summary", summary},
		{VerbDiff, "diff [--staged] [--rev=<rev>] [--markers] [-- paths...]", diff},
		{VerbBranches, "branches", branches},
		{VerbGraph, "graph", graph},
		{VerbLog, "log [range] [--n=<count>]", log},
		{VerbReflog, "reflog [--n=<count>]", reflog},
		{VerbBlame, "blame <path> [line]", blame},
		{VerbTags, "tags", tags},
		{VerbWorktrees, "worktrees", worktrees},
		{VerbRemotes, "remotes", remotes},
		{VerbTracking, "tracking", tracking},
		{VerbPRs, "prs [--state=open|closed|merged|all]", pullRequests},
		{VerbConflicts, "conflicts [path]", conflicts},
		{VerbRebaseTodo, "rebase.todo <base> [--action=pick]", rebaseTodo},
	}
}

func status(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	groups, err := repo.StatusGroups(ctx.Context)
	if err != nil {
		return failure(err)
	}

	var lines []string
	section := func(title string, entries []parse.StatusEntry) {
		if len(entries) == 0 {
			return
		}
		lines = append(lines, title+":")
		for _, e := range entries {
			lines = append(lines, "  "+e.RawLine)
		}
	}
	section("Staged", groups.Staged)
	section("Unstaged", groups.Unstaged)
	section("Untracked", groups.Untracked)

	msg := "working tree clean"
	if groups.Len() > 0 {
		msg = fmt.Sprintf("%d staged, %d unstaged, %d untracked",
			len(groups.Staged), len(groups.Unstaged), len(groups.Untracked))
	}
	return handler.SuccessWithData("groups", groups).
		WithData("clean", groups.Len() == 0).
		WithMessage(msg).
		WithLines(lines...)
}

func summary(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	s, err := repo.Summary(ctx.Context)
	if err != nil {
		return failure(err)
	}
	return handler.SuccessWithData("summary", s).
		WithData("clean", !s.HasChanges()).
		WithMessage(formatSummary(s))
}

func formatSummary(s git.StatusSummary) string {
	var b strings.Builder
	if s.IsDetached {
		b.WriteString("HEAD detached")
	} else {
		b.WriteString("On branch " + s.Branch)
	}
	if s.Upstream != "" {
		fmt.Fprintf(&b, " [%s +%d -%d]", s.Upstream, s.Ahead, s.Behind)
	}
	if !s.HasChanges() {
		b.WriteString(", clean")
		return b.String()
	}
	var parts []string
	if s.StagedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d staged", s.StagedCount))
	}
	if s.UnstagedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", s.UnstagedCount))
	}
	if s.UntrackedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d untracked", s.UntrackedCount))
	}
	if s.ConflictCount > 0 {
		parts = append(parts, fmt.Sprintf("%d conflicts", s.ConflictCount))
	}
	b.WriteString(", " + strings.Join(parts, ", "))
	return b.String()
}

func diff(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	opts := git.DiffOptions{
		Staged: action.Args.Bool("staged"),
		Rev:    action.Args.String("rev", ""),
		Paths:  action.Args.Positional,
	}

	if action.Args.Bool("markers") {
		markers, err := repo.DiffMarkers(ctx.Context, opts)
		if err != nil {
			return failure(err)
		}
		lines := make([]string, 0, len(markers))
		for _, m := range markers {
			lines = append(lines, fmt.Sprintf("%s\t%s\t%d\t%d", m.Kind, m.File, m.OldLine, m.NewLine))
		}
		return handler.SuccessWithData("markers", markers).WithLines(lines...)
	}

	d, err := repo.Diff(ctx.Context, opts)
	if err != nil {
		return failure(err)
	}
	if d.Text == "" {
		return handler.NoOpWithMessage("no changes")
	}
	return handler.SuccessWithData("files", d.Files).
		WithData("diff", d.Text).
		WithMessage(fmt.Sprintf("%d file(s) changed", len(d.Files))).
		WithLines(outputLines(d.Text)...)
}

func branches(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	list, err := repo.Branches(ctx.Context)
	if err != nil {
		return failure(err)
	}
	lines := make([]string, 0, len(list))
	for _, b := range list {
		mark := "  "
		if b.IsCurrent {
			mark = "* "
		}
		lines = append(lines, mark+b.Name)
	}
	r := handler.SuccessWithData("branches", list).WithLines(lines...)
	if cur, ok := parse.CurrentBranch(list); ok {
		r = r.WithData("current", cur.Name).WithMessage("On branch " + cur.Name)
	}
	return r
}

func graph(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	lines, err := repo.Graph(ctx.Context)
	if err != nil {
		return failure(err)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Raw
	}
	return handler.SuccessWithData("graph", lines).WithLines(out...)
}

func log(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	commits, err := repo.Log(ctx.Context, action.Args.Arg(0), action.Args.Int("n", 20))
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(commits))
	for i, c := range commits {
		lines[i] = c.ShortSHA + " " + c.Summary
	}
	return handler.SuccessWithData("commits", commits).WithLines(lines...)
}

func reflog(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	entries, err := repo.Reflog(ctx.Context, action.Args.Int("n", 0))
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%s %s %s: %s", e.ShortSHA, e.Selector, e.Action, e.Description)
	}
	return handler.SuccessWithData("reflog", entries).WithLines(lines...)
}

func blame(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if err := dispatcher.RequireArgs(action, 1, "blame <path> [line]"); err != nil {
		return handler.Error(err)
	}
	path := action.Args.Arg(0)

	if action.Args.Len() > 1 {
		n, err := index(action.Args.Arg(1), 0)
		if err != nil {
			return handler.Error(err)
		}
		line, found, err := repo.BlameLine(ctx.Context, path, n)
		if err != nil {
			return failure(err)
		}
		if !found {
			return handler.NoOpWithMessage(fmt.Sprintf("%s has no line %d", path, n))
		}
		return handler.SuccessWithData("line", line).
			WithMessage(fmt.Sprintf("%s %s %s %s", line.ShortSHA, line.Author, line.Date, line.Summary))
	}

	lines, err := repo.Blame(ctx.Context, path)
	if err != nil {
		return failure(err)
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s (%s %s %4d) %s", l.ShortSHA, l.Author, l.Date, l.FinalLine, l.Content)
	}
	return handler.SuccessWithData("blame", lines).WithLines(out...)
}

func tags(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	list, err := repo.Tags(ctx.Context)
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(list))
	for i, t := range list {
		lines[i] = t.Name
		if t.Subject != "" {
			lines[i] += "\t" + t.Subject
		}
	}
	return handler.SuccessWithData("tags", list).WithLines(lines...)
}

func worktrees(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	list, err := repo.Worktrees(ctx.Context)
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(list))
	for i, w := range list {
		ref := "[" + w.Branch + "]"
		switch {
		case w.IsBare:
			ref = "(bare)"
		case w.IsDetached:
			ref = "(detached HEAD)"
		}
		lines[i] = fmt.Sprintf("%s %s %s", w.Path, w.ShortSHA, ref)
	}
	return handler.SuccessWithData("worktrees", list).WithLines(lines...)
}

func remotes(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	list, err := repo.Remotes(ctx.Context)
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(list))
	for i, r := range list {
		lines[i] = r.Name + "\t" + r.FetchURL
	}
	return handler.SuccessWithData("remotes", list).WithLines(lines...)
}

func tracking(_ handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	t, err := repo.Tracking(ctx.Context)
	if err != nil {
		return failure(err)
	}
	r := handler.SuccessWithData("tracking", t)
	switch {
	case t.Detached:
		return r.WithMessage("HEAD detached")
	case !t.HasUpstream:
		return r.WithMessage(t.Branch + " has no upstream")
	}
	return r.WithMessage(fmt.Sprintf("%s...%s ahead %d, behind %d", t.Branch, t.Upstream, t.Ahead, t.Behind))
}

func pullRequests(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	prs, err := repo.PullRequests(ctx.Context, action.Args.String("state", ""))
	if err != nil {
		return failure(err)
	}
	lines := make([]string, len(prs))
	for i, pr := range prs {
		lines[i] = fmt.Sprintf("#%d\t%s\t%s\t%s", pr.Number, pr.Title, pr.HeadRef, pr.Author)
	}
	return handler.SuccessWithData("pullRequests", prs).WithLines(lines...)
}

// conflicts lists conflicted paths, or the hunks of one path.
func conflicts(action handler.Action, ctx *execctx.ExecutionContext, repo *git.Repository) handler.Result {
	if action.Args.Len() == 0 {
		paths, err := repo.ConflictedPaths(ctx.Context)
		if err != nil {
			return failure(err)
		}
		if len(paths) == 0 {
			return handler.NoOpWithMessage("no conflicts")
		}
		return handler.SuccessWithData("conflicts", paths).WithLines(paths...)
	}

	path := action.Args.Arg(0)
	hunks, err := repo.Conflicts(path)
	if err != nil {
		return failure(err)
	}
	return hunksResult(path, hunks)
}

func hunksResult(path string, hunks []parse.ConflictHunk) handler.Result {
	if len(hunks) == 0 {
		return handler.SuccessWithData("hunks", hunks).
			WithData("path", path).
			WithMessage(path + " has no conflicts")
	}
	lines := make([]string, len(hunks))
	for i, h := range hunks {
		lines[i] = fmt.Sprintf("%d: lines %d-%d (%s vs %s)", i+1, h.StartLine, h.EndLine, h.LocalLabel, h.RemoteLabel)
	}
	return handler.SuccessWithData("hunks", hunks).
		WithData("path", path).
		WithMessage(fmt.Sprintf("%s has %d conflict(s)", path, len(hunks))).
		WithLines(lines...)
}
