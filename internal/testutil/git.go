package testutil

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// testSignature is fixed so commits made by tests hash the same on every run.
var testSignature = object.Signature{Name: "docsite tests", Email: "tests@docsite.invalid", When: time.Unix(0, 0).UTC()}

// SetupTestGitRepo makes a non-bare repository in a temp dir and returns it with
// its worktree and path.
func SetupTestGitRepo(t *testing.T) (*git.Repository, *git.Worktree, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "init repository")
	wt, err := repo.Worktree()
	require.NoError(t, err, "open worktree")
	return repo, wt, dir
}

// CommitFile writes content to rel (slash separated) under root, stages and commits it.
func CommitFile(t *testing.T, wt *git.Worktree, root, rel, content, msg string) {
	t.Helper()
	WriteFile(t, root, rel, content)
	_, err := wt.Add(rel)
	require.NoError(t, err, "stage %s", rel)
	sig := testSignature
	_, err = wt.Commit(msg, &git.CommitOptions{Author: &sig, Committer: &sig})
	require.NoError(t, err, "commit %s", rel)
}
