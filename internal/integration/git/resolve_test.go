package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gitpanel/internal/integration/git/parse"
)

const twoHunks = `head
<<<<<<< HEAD
ours one
=======
theirs one
>>>>>>> feature
middle
<<<<<<< HEAD
ours two
=======
theirs two
>>>>>>> feature
tail
`

const diff3Hunk = "a\n<<<<<<< ours\nx\n||||||| base\nb\n=======\ny\n>>>>>>> theirs\nz\n"

func writeConflict(t *testing.T, repo *Repository, name, content string) string {
	t.Helper()
	if err := os.WriteFile(filepath.Join(repo.Path(), name), []byte(content), 0640); err != nil {
		t.Fatalf("write: %v", err)
	}
	return name
}

func readBack(t *testing.T, repo *Repository, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(repo.Path(), name))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func TestResolveConflictSides(t *testing.T) {
	tests := []struct {
		name string
		res  parse.Resolution
		want string
	}{
		{"local", parse.ResolveLocal{}, "head\nours one\nmiddle\n"},
		{"remote", parse.ResolveRemote{}, "head\ntheirs one\nmiddle\n"},
		{"both", parse.ResolveBoth{}, "head\nours one\ntheirs one\nmiddle\n"},
		{"edit", parse.ResolveEdit{Lines: []string{"merged"}}, "head\nmerged\nmiddle\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := scriptedRepo(t)
			name := writeConflict(t, repo, "f.txt", twoHunks)

			remaining, err := repo.ResolveConflict(name, 1, tt.res)
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, []string{"ours two"}, remaining[0].LocalLines)

			got := readBack(t, repo, name)
			assert.Equal(t, tt.want+"<<<<<<< HEAD\nours two\n=======\ntheirs two\n>>>>>>> feature\ntail\n", got)
		})
	}
}

func TestResolveConflictSecondHunkThenFirst(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "f.txt", twoHunks)

	remaining, err := repo.ResolveConflict(name, 2, parse.ResolveRemote{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)

	remaining, err = repo.ResolveConflict(name, 1, parse.ResolveLocal{})
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, "head\nours one\nmiddle\ntheirs two\ntail\n", readBack(t, repo, name))
}

func TestResolveConflictBase(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "d.txt", diff3Hunk)

	_, err := repo.ResolveConflict(name, 1, parse.ResolveBase{})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nz\n", readBack(t, repo, name))

	name = writeConflict(t, repo, "two.txt", twoHunks)
	_, err = repo.ResolveConflict(name, 1, parse.ResolveBase{})
	assert.ErrorIs(t, err, ErrNoBaseSection)
	assert.Equal(t, twoHunks, readBack(t, repo, name), "file must be untouched")
}

func TestResolveConflictHunkNotFound(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "f.txt", twoHunks)

	for _, idx := range []int{0, 3, -1} {
		hunks, err := repo.ResolveConflict(name, idx, parse.ResolveLocal{})
		assert.ErrorIs(t, err, ErrHunkNotFound, "index %d", idx)
		assert.Len(t, hunks, 2)
	}
}

func TestResolveConflictMissingFile(t *testing.T) {
	repo, _ := scriptedRepo(t)

	_, err := repo.ResolveConflict("missing.txt", 1, parse.ResolveLocal{})
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "stat", fe.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestResolveConflictCRLF(t *testing.T) {
	repo, _ := scriptedRepo(t)
	content := "a\r\n<<<<<<< HEAD\r\nx\r\n=======\r\ny\r\n>>>>>>> b\r\nz\r\n"
	name := writeConflict(t, repo, "w.txt", content)

	_, err := repo.ResolveConflict(name, 1, parse.ResolveEdit{Lines: []string{"one", "two"}})
	require.NoError(t, err)
	assert.Equal(t, "a\r\none\r\ntwo\r\nz\r\n", readBack(t, repo, name))
}

func TestResolveConflictNoTrailingNewline(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "n.txt", "<<<<<<< HEAD\nx\n=======\ny\n>>>>>>> b")

	_, err := repo.ResolveConflict(name, 1, parse.ResolveRemote{})
	require.NoError(t, err)
	assert.Equal(t, "y", readBack(t, repo, name))
}

func TestResolveConflictKeepsMode(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "m.sh", twoHunks)
	require.NoError(t, os.Chmod(filepath.Join(repo.Path(), name), 0755))

	_, err := repo.ResolveConflict(name, 1, parse.ResolveLocal{})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(repo.Path(), name))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestResolveConflictInteractive(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "f.txt", twoHunks)

	// Choice 1 is "remote" for a two-way hunk.
	prompter := &StaticPrompter{Accept: true, Choice: 1}
	remaining, err := repo.ResolveConflictInteractive(context.Background(), name, 1, prompter)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Contains(t, readBack(t, repo, name), "head\ntheirs one\nmiddle\n")

	msgs := prompter.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "HEAD vs feature")
}

func TestResolveConflictInteractiveEdit(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "d.txt", diff3Hunk)

	// local, remote, both, base, edit
	prompter := &StaticPrompter{Accept: true, Choice: 4, Text: "p\nq", TextOK: true}
	_, err := repo.ResolveConflictInteractive(context.Background(), name, 1, prompter)
	require.NoError(t, err)
	assert.Equal(t, "a\np\nq\nz\n", readBack(t, repo, name))
}

func TestResolveConflictInteractiveCancelled(t *testing.T) {
	repo, _ := scriptedRepo(t)
	name := writeConflict(t, repo, "f.txt", twoHunks)

	_, err := repo.ResolveConflictInteractive(context.Background(), name, 1, &StaticPrompter{Accept: false})
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = repo.ResolveConflictInteractive(context.Background(), name, 1, &StaticPrompter{Accept: true, Choice: 3})
	assert.ErrorIs(t, err, ErrCancelled, "edit without input cancels")
	assert.Equal(t, twoHunks, readBack(t, repo, name))
}
