// Package publish deploys a built site to a git branch, the way GitHub Pages expects it.
package publish

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/git"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/workspace"
)

// Result describes one publish run.
type Result struct {
	Branch string
	Commit string
	// Changed is false when the branch already held exactly this site.
	Changed bool
	Pushed  bool
}

// Publisher commits a site directory to the configured branch and pushes it.
type Publisher struct {
	cfg     config.PublishConfig
	baseDir string
	noPush  bool
	now     func() time.Time
}

// New creates a publisher from the publish section of cfg.
func New(cfg *config.Config) *Publisher {
	return &Publisher{cfg: cfg.Publish, baseDir: cfg.BaseDir(), now: time.Now}
}

// WithNoPush commits without pushing (fluent helper).
func (p *Publisher) WithNoPush(noPush bool) *Publisher { p.noPush = noPush; return p }

// Publish replaces the branch contents with siteDir plus .nojekyll and an optional CNAME.
func (p *Publisher) Publish(ctx context.Context, siteDir string) (*Result, error) {
	if p.cfg.RemoteURL == "" {
		return nil, errors.ConfigError("publish.remote_url is not set").Build()
	}
	if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
		return nil, errors.PublishError("site directory does not exist; build the site first").
			WithContext("path", siteDir).Fatal().Build()
	}
	auth, err := git.TokenAuth(p.cfg.RemoteURL, p.cfg.Username, p.cfg.TokenEnv)
	if err != nil {
		return nil, err
	}

	ws := workspace.NewManager("", "docsite-publish")
	if err := ws.Create(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "create publish workspace").Build()
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to remove publish workspace", logfields.Error(err))
		}
	}()

	client := git.NewClient(ws.Path(), git.Options{
		URL:        p.cfg.RemoteURL,
		RemoteName: p.cfg.RemoteName,
		Branch:     p.cfg.Branch,
		Auth:       auth,
	})
	if _, err := client.Open(ctx); err != nil {
		return nil, err
	}

	extra := map[string][]byte{".nojekyll": {}}
	if p.cfg.CNAME != "" {
		extra["CNAME"] = []byte(p.cfg.CNAME + "\n")
	}
	if err := client.ReplaceTree(siteDir, extra); err != nil {
		return nil, err
	}

	sig := object.Signature{Name: p.cfg.AuthorName, Email: p.cfg.AuthorEmail, When: p.now()}
	hash, changed, err := client.Commit(p.message(), sig)
	if err != nil {
		return nil, err
	}
	res := &Result{Branch: p.cfg.Branch, Commit: hash, Changed: changed}
	if !changed {
		slog.Info("Publish branch already up to date", logfields.Branch(p.cfg.Branch))
		return res, nil
	}
	if p.noPush {
		slog.Info("Skipping push", logfields.Branch(p.cfg.Branch))
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryPublish, "publish canceled").Build()
	}
	if err := client.Push(ctx); err != nil {
		return nil, err
	}
	res.Pushed = true
	return res, nil
}

// message fills %s in the configured commit message with the source revision.
func (p *Publisher) message() string {
	rev := git.HeadRevision(p.baseDir)
	if rev == "" {
		rev = "unknown revision"
	}
	return strings.ReplaceAll(p.cfg.Message, "%s", rev)
}
