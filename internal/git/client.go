package git

import (
	"context"
	stdErrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Options identify the remote branch a Client works on.
type Options struct {
	URL        string
	RemoteName string
	Branch     string
	Auth       transport.AuthMethod
}

// Client handles the git side of publishing: one branch checked out into one directory.
type Client struct {
	dir    string
	opts   Options
	policy retry.Policy
	repo   *git.Repository
}

// NewClient creates a client that checks out into dir.
func NewClient(dir string, opts Options) *Client {
	if opts.RemoteName == "" {
		opts.RemoteName = "origin"
	}
	return &Client{dir: dir, opts: opts, policy: defaultPolicy()}
}

// WithPolicy replaces the retry policy used for remote operations (fluent helper).
func (c *Client) WithPolicy(p retry.Policy) *Client { c.policy = p; return c }

// Dir returns the checkout directory.
func (c *Client) Dir() string { return c.dir }

// Open clones the branch. When the remote is empty or lacks the branch an orphan branch
// is initialized instead and Open reports existing=false.
func (c *Client) Open(ctx context.Context) (existing bool, err error) {
	ref := plumbing.NewBranchReferenceName(c.opts.Branch)
	slog.Debug("Cloning publish branch", logfields.URL(c.opts.URL), logfields.Branch(c.opts.Branch), logfields.Path(c.dir))

	var repo *git.Repository
	cloneErr := c.withRetry(ctx, "clone", func() error {
		var err error
		repo, err = git.PlainCloneContext(ctx, c.dir, false, &git.CloneOptions{
			URL:           c.opts.URL,
			RemoteName:    c.opts.RemoteName,
			ReferenceName: ref,
			SingleBranch:  true,
			Auth:          c.opts.Auth,
		})
		if err != nil && !missingBranch(err) {
			return classifyRemoteError("clone", c.opts.URL, c.opts.Branch, err)
		}
		return err
	})
	switch {
	case cloneErr == nil:
		c.repo = repo
		return true, nil
	case !missingBranch(cloneErr):
		return false, ClassifyGitError(cloneErr, "clone", c.opts.URL)
	}

	slog.Info("Publish branch does not exist yet; starting an orphan branch", logfields.Branch(c.opts.Branch))
	if err := clearDir(c.dir, ""); err != nil {
		return false, err
	}
	repo, err = git.PlainInit(c.dir, false)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryPublish, "initialize publish repository").
			WithContext("path", c.dir).Build()
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, ref)); err != nil {
		return false, errors.WrapError(err, errors.CategoryPublish, "point HEAD at the publish branch").Build()
	}
	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{Name: c.opts.RemoteName, URLs: []string{c.opts.URL}}); err != nil {
		return false, errors.WrapError(err, errors.CategoryPublish, "configure publish remote").Build()
	}
	c.repo = repo
	return false, nil
}

func missingBranch(err error) bool {
	return stdErrors.Is(err, transport.ErrEmptyRemoteRepository) ||
		stdErrors.Is(err, plumbing.ErrReferenceNotFound) ||
		stdErrors.Is(err, git.NoMatchingRefSpecError{})
}

// ReplaceTree makes the worktree an exact copy of src plus the extra files, then stages
// every addition, change and deletion.
func (c *Client) ReplaceTree(src string, extra map[string][]byte) error {
	if c.repo == nil {
		return errors.InternalError("ReplaceTree before Open").Build()
	}
	if err := clearDir(c.dir, git.GitDirName); err != nil {
		return err
	}
	if err := copyTree(src, c.dir); err != nil {
		return err
	}
	for name, data := range extra {
		if err := os.WriteFile(filepath.Join(c.dir, name), data, 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "write publish file").WithContext("path", name).Build()
		}
	}

	w, err := c.repo.Worktree()
	if err != nil {
		return errors.WrapError(err, errors.CategoryPublish, "open worktree").Build()
	}
	status, err := w.Status()
	if err != nil {
		return errors.WrapError(err, errors.CategoryPublish, "compute worktree status").Build()
	}
	for path, s := range status {
		switch s.Worktree {
		case git.Unmodified:
			continue
		case git.Deleted:
			_, err = w.Remove(path)
		default:
			_, err = w.Add(path)
		}
		if err != nil {
			return errors.WrapError(err, errors.CategoryPublish, "stage file").WithContext("path", path).Build()
		}
	}
	return nil
}

// Commit records the staged tree. changed is false when there was nothing to commit.
func (c *Client) Commit(message string, sig object.Signature) (hash string, changed bool, err error) {
	w, err := c.repo.Worktree()
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryPublish, "open worktree").Build()
	}
	status, err := w.Status()
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryPublish, "compute worktree status").Build()
	}
	if _, headErr := c.repo.Head(); headErr == nil && status.IsClean() {
		return "", false, nil
	}
	h, err := w.Commit(message, &git.CommitOptions{Author: &sig, Committer: &sig})
	if err != nil {
		return "", false, errors.WrapError(err, errors.CategoryPublish, "commit site").Build()
	}
	slog.Info("Committed site", logfields.Branch(c.opts.Branch), slog.String("commit", h.String()[:8]))
	return h.String(), true, nil
}

// Push sends the branch to the remote. An up-to-date remote is not an error.
func (c *Client) Push(ctx context.Context) error {
	spec := gitconfig.RefSpec("refs/heads/" + c.opts.Branch + ":refs/heads/" + c.opts.Branch)
	err := c.withRetry(ctx, "push", func() error {
		err := c.repo.PushContext(ctx, &git.PushOptions{
			RemoteName: c.opts.RemoteName,
			RefSpecs:   []gitconfig.RefSpec{spec},
			Auth:       c.opts.Auth,
		})
		if stdErrors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return classifyRemoteError("push", c.opts.URL, c.opts.Branch, err)
	})
	if err != nil {
		return ClassifyGitError(err, "push", c.opts.URL)
	}
	slog.Info("Pushed publish branch", logfields.URL(c.opts.URL), logfields.Branch(c.opts.Branch))
	return nil
}

// HeadRevision returns the abbreviated HEAD commit of the repository containing dir,
// or "" when dir is not inside a git repository.
func HeadRevision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()[:8]
}

// clearDir removes every entry of dir except keep.
func clearDir(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "read directory").WithContext("path", dir).Build()
	}
	for _, e := range entries {
		if keep != "" && e.Name() == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "clear directory").WithContext("path", dir).Build()
		}
	}
	return nil
}

func copyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p) // #nosec G304 -- walking the built site
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "copy site into checkout").
			WithContext("from", src).Build()
	}
	return nil
}
