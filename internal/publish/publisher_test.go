package publish

import (
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func bareRemote(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)
	return dir
}

func publisher(t *testing.T, remote string) *Publisher {
	t.Helper()
	cfg := config.Default("Docs", t.TempDir())
	cfg.Publish.RemoteURL = remote
	cfg.Publish.CNAME = "docs.example.com"
	p := New(cfg)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

// checkout clones the published branch for inspection.
func checkout(t *testing.T, remote string) (*git.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:           remote,
		ReferenceName: plumbing.NewBranchReferenceName(config.DefaultBranch),
		SingleBranch:  true,
	})
	require.NoError(t, err)
	return repo, dir
}

func commitCount(t *testing.T, repo *git.Repository) int {
	t.Helper()
	iter, err := repo.Log(&git.LogOptions{})
	require.NoError(t, err)
	n := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error { n++; return nil }))
	return n
}

func TestPublishCreatesOrphanBranch(t *testing.T) {
	remote := bareRemote(t)
	site := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.html":    "<h1>Home</h1>",
		"guide/a.html":  "<h1>A</h1>",
		"css/style.css": "body{}",
	})

	res, err := publisher(t, remote).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.Pushed)
	assert.Equal(t, "gh-pages", res.Branch)
	assert.Len(t, res.Commit, 40)

	repo, dir := checkout(t, remote)
	testutil.NewFileAssertions(t, dir).
		AssertFileContains("index.html", "Home").
		AssertFileExists("guide/a.html").
		AssertFileExists(".nojekyll").
		AssertFileContains("CNAME", "docs.example.com")

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "docsite", commit.Author.Name)
	assert.Equal(t, "Deployed unknown revision with docsite", commit.Message)
}

func TestPublishReplacesTree(t *testing.T) {
	remote := bareRemote(t)
	p := publisher(t, remote)

	first := testutil.WriteTree(t, t.TempDir(), map[string]string{
		"index.html": "v1",
		"old.html":   "gone soon",
	})
	_, err := p.Publish(context.Background(), first)
	require.NoError(t, err)

	second := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.html": "v2"})
	res, err := p.Publish(context.Background(), second)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	repo, dir := checkout(t, remote)
	testutil.NewFileAssertions(t, dir).
		AssertFileContains("index.html", "v2").
		AssertNotExists("old.html")
	assert.Equal(t, 2, commitCount(t, repo))

	again, err := p.Publish(context.Background(), second)
	require.NoError(t, err)
	assert.False(t, again.Changed, "identical site has nothing to commit")
	assert.False(t, again.Pushed)
	repo, _ = checkout(t, remote)
	assert.Equal(t, 2, commitCount(t, repo))
}

func TestPublishOntoExistingBranch(t *testing.T) {
	remote := bareRemote(t)
	seed, w, seedDir := testutil.SetupTestGitRepo(t)
	testutil.CommitFile(t, w, seedDir, "stale.txt", "stale", "seed")
	_, err := seed.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{remote}})
	require.NoError(t, err)
	require.NoError(t, seed.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{"refs/heads/master:refs/heads/gh-pages"},
	}))

	site := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.html": "fresh"})
	res, err := publisher(t, remote).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.True(t, res.Pushed)

	repo, dir := checkout(t, remote)
	testutil.NewFileAssertions(t, dir).
		AssertFileContains("index.html", "fresh").
		AssertNotExists("stale.txt")
	assert.Equal(t, 2, commitCount(t, repo), "history of the branch is kept")
}

func TestPublishNoPush(t *testing.T) {
	remote := bareRemote(t)
	site := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.html": "x"})

	res, err := publisher(t, remote).WithNoPush(true).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Pushed)

	bare, err := git.PlainOpen(remote)
	require.NoError(t, err)
	_, err = bare.Reference(plumbing.NewBranchReferenceName("gh-pages"), false)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
}

func TestPublishErrors(t *testing.T) {
	site := testutil.WriteTree(t, t.TempDir(), map[string]string{"index.html": "x"})

	_, err := publisher(t, "").Publish(context.Background(), site)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = publisher(t, bareRemote(t)).Publish(context.Background(), t.TempDir()+"/missing")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryPublish))
}

func TestMessageUsesSourceRevision(t *testing.T) {
	_, w, dir := testutil.SetupTestGitRepo(t)
	testutil.CommitFile(t, w, dir, "docs/index.md", "# Home", "docs")

	cfg := config.Default("Docs", dir)
	p := New(cfg)
	msg := p.message()
	assert.Regexp(t, `^Deployed [0-9a-f]{8} with docsite$`, msg)
}
