package git

import (
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// TokenAuth returns HTTP basic auth built from the token in the environment variable
// tokenEnv. Remotes that are not http(s) get no auth method. An unset token is allowed
// for public or local remotes; the push fails with an auth error if one was needed.
func TokenAuth(remoteURL, username, tokenEnv string) (transport.AuthMethod, error) {
	if !strings.HasPrefix(remoteURL, "http://") && !strings.HasPrefix(remoteURL, "https://") {
		return nil, nil
	}
	if tokenEnv == "" {
		return nil, errors.ConfigError("publish.token_env must name an environment variable").Build()
	}
	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, nil
	}
	return &http.BasicAuth{Username: username, Password: token}, nil
}
