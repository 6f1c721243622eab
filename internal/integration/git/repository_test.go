package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

func TestCachedQueries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))

	runner := &scriptedRunner{steps: []step{ok("?? a.txt\n"), ok("?? a.txt\n?? b.txt\n")}}
	repo, err := openRepository(dir, repositoryConfig{facade: NewFacade(runner), cacheTTL: time.Minute})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := repo.Status(ctx)
	require.NoError(t, err)
	second, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Len(t, runner.commands(), 1, "second query must hit the cache")

	gen := repo.Generation().Current()
	repo.Invalidate()
	assert.False(t, repo.Generation().IsCurrent(gen))

	third, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Len(t, runner.commands(), 2)
}

func TestUncachedQueries(t *testing.T) {
	repo, runner := scriptedRepo(t, ok(""), ok(""))
	ctx := context.Background()

	_, err := repo.Status(ctx)
	require.NoError(t, err)
	_, err = repo.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, runner.commands(), 2)
}

func TestQueryFailureIsCommandError(t *testing.T) {
	repo, _ := scriptedRepo(t, fail(128, "fatal: not a git repository (or any of the parent directories): .git"))

	_, err := repo.Branches(context.Background())
	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 128, ce.ExitCode)
	assert.Equal(t, []string{"git", "for-each-ref", "--format=%(HEAD)\t%(refname:short)\t%(refname)", "refs/heads", "refs/remotes"}, ce.Args)
}

func TestDiffArgs(t *testing.T) {
	repo, runner := scriptedRepo(t, ok(""), ok(""))
	ctx := context.Background()

	_, err := repo.Diff(ctx, DiffOptions{})
	require.NoError(t, err)
	_, err = repo.Diff(ctx, DiffOptions{Staged: true, Rev: "HEAD~1", Paths: []string{"a.go"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"diff --no-color",
		"diff --no-color --cached HEAD~1 -- a.go",
	}, runner.commands())
}

func TestPullRequestsRunsGh(t *testing.T) {
	repo, runner := scriptedRepo(t, ok(`[{"number":7,"title":"Fix","headRefName":"fix","state":"OPEN","url":"u","author":{"login":"octo"}}]`))

	prs, err := repo.PullRequests(context.Background(), "open")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, "octo", prs[0].Author)
	assert.Equal(t, "gh", runner.calls[0][0])
	assert.Equal(t, repo.Path(), runner.opts[0].Dir)
}

func TestBisectVerdict(t *testing.T) {
	repo, runner := scriptedRepo(t, ok("abc123 is the first bad commit\ncommit abc123\n"))

	_, err := repo.Bisect(context.Background(), "maybe", "")
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.Empty(t, runner.commands())

	res, err := repo.Bisect(context.Background(), "bad", "")
	require.NoError(t, err)
	assert.True(t, res.Done)
	assert.Equal(t, "abc123", res.FirstBad)
}

// The tests below drive a real git binary.

func TestRepositoryLifecycle(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()

	repo := openTestRepo(t, dir)
	ctx := context.Background()

	createFile(t, dir, "a.txt", "one\n")
	groups, err := repo.StatusGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups.Untracked, 1)
	assert.Equal(t, "a.txt", groups.Untracked[0].Path)

	require.NoError(t, repo.Stage(ctx, "a.txt"))
	groups, err = repo.StatusGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups.Staged, 1)

	require.NoError(t, repo.Unstage(ctx, "a.txt"), "unstage before the first commit")
	groups, err = repo.StatusGroups(ctx)
	require.NoError(t, err)
	assert.Len(t, groups.Untracked, 1)

	require.NoError(t, repo.Stage(ctx))
	head, err := repo.Commit(ctx, "first", CommitOptions{})
	require.NoError(t, err)
	assert.Len(t, head.SHA, 40)
	assert.Equal(t, "first", head.Summary)

	_, err = repo.Commit(ctx, "  ", CommitOptions{})
	assert.ErrorIs(t, err, ErrCommandFailed)

	branches, err := repo.Branches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "main", branches[0].Name)
	assert.True(t, branches[0].IsCurrent)

	require.NoError(t, repo.CreateTag(ctx, "v1", "release"))
	require.NoError(t, repo.CreateTag(ctx, "light", ""))
	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	for _, tag := range tags {
		assert.Equal(t, tag.Name == "v1", tag.IsAnnotated, tag.Name)
	}

	log, err := repo.Log(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, head.SHA, log[0].SHA)

	graph, err := repo.Graph(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, graph)
	assert.Equal(t, head.ShortSHA, graph[0].Hash[:len(head.ShortSHA)])

	reflog, err := repo.Reflog(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, reflog)
	assert.Equal(t, "HEAD@{0}", reflog[0].Selector)

	blame, err := repo.Blame(ctx, "a.txt")
	require.NoError(t, err)
	require.Len(t, blame, 1)
	assert.Equal(t, "Test User", blame[0].Author)
	assert.Equal(t, "test@example.com", blame[0].AuthorMail)

	line, found, err := repo.BlameLine(ctx, "a.txt", 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "one", line.Content)

	worktrees, err := repo.Worktrees(ctx)
	require.NoError(t, err)
	require.Len(t, worktrees, 1)
	assert.True(t, worktrees[0].IsMain)

	tracking, err := repo.Tracking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", tracking.Branch)
	assert.False(t, tracking.HasUpstream)
}

func TestRepositoryStash(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()
	commitFile(t, dir, "a.txt", "one\n", "first")

	repo := openTestRepo(t, dir)
	ctx := context.Background()

	createFile(t, dir, "a.txt", "two\n")
	require.NoError(t, repo.StashPush(ctx, "wip", false))

	stashes, err := repo.Stashes(ctx)
	require.NoError(t, err)
	require.Len(t, stashes, 1)
	assert.Equal(t, 0, stashes[0].Index)
	assert.Contains(t, stashes[0].Description, "wip")

	status, err := repo.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, status)

	require.NoError(t, repo.StashPop(ctx, 0))
	stashes, err = repo.Stashes(ctx)
	require.NoError(t, err)
	assert.Empty(t, stashes)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "two\n", string(data))
}

func TestRepositoryBranchSwitching(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()
	commitFile(t, dir, "a.txt", "one\n", "first")

	repo := openTestRepo(t, dir)
	ctx := context.Background()

	require.NoError(t, repo.CreateBranch(ctx, "dev", ""))
	name, err := repo.CurrentBranchName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dev", name)

	require.NoError(t, repo.Switch(ctx, "main"))
	name, err = repo.CurrentBranchName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", name)

	require.NoError(t, repo.DeleteBranch(ctx, "dev", false))
	_, err = repo.FindBranch(ctx, "dev")
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestRepositoryMergeConflictEndToEnd(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()

	createFile(t, dir, "a.txt", "base\n")
	commitFile(t, dir, "b.txt", "base\n", "base")

	gitCmd(t, dir, "switch", "-q", "-c", "feature")
	createFile(t, dir, "a.txt", "feature\n")
	commitFile(t, dir, "b.txt", "feature\n", "feature")

	gitCmd(t, dir, "switch", "-q", "main")
	createFile(t, dir, "a.txt", "main\n")
	commitFile(t, dir, "b.txt", "main\n", "main")

	repo := openTestRepo(t, dir)
	ctx := context.Background()

	_, err := repo.Merge(ctx, "feature", MergeOptions{})
	require.ErrorIs(t, err, ErrConflict)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, Conflicts(err))

	unmerged, err := repo.ConflictedPaths(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, unmerged)

	hunks, err := repo.Conflicts("a.txt")
	require.NoError(t, err)
	require.Len(t, hunks, 1)
	assert.Equal(t, []string{"main"}, hunks[0].LocalLines)
	assert.Equal(t, []string{"feature"}, hunks[0].RemoteLines)

	remaining, err := repo.ResolveConflict("a.txt", 1, parse.ResolveRemote{})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	res, err := repo.MergeAbort(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAborted, res.Outcome)

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "main\n", string(data))
}

func TestRepositoryInteractiveRebase(t *testing.T) {
	dir, cleanup := testRepo(t)
	defer cleanup()

	commitFile(t, dir, "a.txt", "1\n", "one")
	commitFile(t, dir, "a.txt", "2\n", "two")
	commitFile(t, dir, "a.txt", "3\n", "three")

	repo := openTestRepo(t, dir)
	ctx := context.Background()

	todo, err := repo.RebaseTodo(ctx, "HEAD~2", "fixup")
	require.NoError(t, err)
	require.Len(t, todo, 2)
	todo[0] = "pick" + todo[0][len("fixup"):]

	res, err := repo.RebaseInteractive(ctx, "HEAD~2", todo)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRebased, res.Outcome)

	log, err := repo.Log(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "two", log[0].Summary)
}
