package git

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noUpstream = "fatal: The current branch main has no upstream branch.\nTo push the current branch and set the remote as upstream, use\n\n    git push --set-upstream origin main\n"

func TestPushSuccess(t *testing.T) {
	repo, runner := scriptedRepo(t, ok("Everything up-to-date\n"))
	prompter := &StaticPrompter{Accept: true}

	res, err := repo.Push(context.Background(), PushOptions{}, prompter)
	require.NoError(t, err)
	assert.Equal(t, "Everything up-to-date", res.Output)
	assert.False(t, res.SetUpstream)
	assert.Equal(t, []string{"push"}, runner.commands())
	assert.Empty(t, prompter.Messages())
}

func TestPushSetsUpstream(t *testing.T) {
	repo, runner := scriptedRepo(t,
		fail(128, noUpstream),
		ok("main\n"),
		ok("branch 'main' set up to track 'origin/main'.\n"),
	)
	prompter := &StaticPrompter{Accept: true}

	res, err := repo.Push(context.Background(), PushOptions{}, prompter)
	require.NoError(t, err)
	assert.True(t, res.SetUpstream)
	assert.Equal(t, "main", res.Branch)
	assert.Equal(t, []string{
		"push",
		"rev-parse --abbrev-ref HEAD",
		"push -u origin main",
	}, runner.commands())

	msgs := prompter.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], `"main"`)
	assert.Contains(t, msgs[0], "origin/main")
}

func TestPushKeepsFlagsAndRemote(t *testing.T) {
	repo, runner := scriptedRepo(t,
		fail(128, noUpstream),
		ok("feature\n"),
		ok(""),
	)

	_, err := repo.Push(context.Background(), PushOptions{Remote: "fork", ForceWithLease: true}, &StaticPrompter{Accept: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"push --force-with-lease fork",
		"rev-parse --abbrev-ref HEAD",
		"push --force-with-lease -u fork feature",
	}, runner.commands())
}

func TestPushDeclined(t *testing.T) {
	repo, runner := scriptedRepo(t, fail(128, noUpstream), ok("main\n"))

	_, err := repo.Push(context.Background(), PushOptions{}, &StaticPrompter{Accept: false})
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Len(t, runner.commands(), 2)
}

func TestPushNoPrompter(t *testing.T) {
	repo, _ := scriptedRepo(t, fail(128, noUpstream), ok("main\n"))

	_, err := repo.Push(context.Background(), PushOptions{}, nil)
	assert.ErrorIs(t, err, ErrNoUpstream)
	assert.Contains(t, Output(err), "has no upstream branch")
}

func TestPushDetachedHead(t *testing.T) {
	repo, runner := scriptedRepo(t, fail(128, noUpstream), ok("HEAD\n"))
	prompter := &StaticPrompter{Accept: true}

	_, err := repo.Push(context.Background(), PushOptions{}, prompter)
	assert.ErrorIs(t, err, ErrDetachedHead)
	assert.Empty(t, prompter.Messages(), "detached HEAD must not prompt")
	assert.Len(t, runner.commands(), 2)
}

func TestPushOtherFailureVerbatim(t *testing.T) {
	stderr := "To github.com:x/y.git\n ! [rejected]        main -> main (fetch first)\nerror: failed to push some refs"
	repo, runner := scriptedRepo(t, fail(1, stderr))

	_, err := repo.Push(context.Background(), PushOptions{}, &StaticPrompter{Accept: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	assert.False(t, errors.Is(err, ErrNoUpstream))
	assert.Equal(t, stderr, Output(err))
	assert.Len(t, runner.commands(), 1)

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 1, ce.ExitCode)
}

func TestPushRetryFailure(t *testing.T) {
	repo, _ := scriptedRepo(t,
		fail(128, noUpstream),
		ok("main\n"),
		fail(128, "fatal: 'origin' does not appear to be a git repository"),
	)

	_, err := repo.Push(context.Background(), PushOptions{}, &StaticPrompter{Accept: true})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(Output(err), "fatal: 'origin'"))
}

func TestRemotesParsed(t *testing.T) {
	repo, runner := scriptedRepo(t, ok("origin\tgit@github.com:x/y.git (fetch)\norigin\tgit@github.com:x/y.git (push)\n"))

	remotes, err := repo.Remotes(context.Background())
	require.NoError(t, err)
	require.Len(t, remotes, 1)
	assert.Equal(t, "origin", remotes[0].Name)
	assert.Equal(t, []string{"remote -v"}, runner.commands())
}
