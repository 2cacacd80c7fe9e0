package git

import "git.home.luguber.info/inful/docsite/internal/foundation/errors"

// ClassifyGitError turns go-git failures into classified publish errors. Failures of
// a known kind are not retried. Anything else is marked for backoff.
func ClassifyGitError(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	typed, _ := typedRemoteError(err)
	switch e := typed.(type) {
	case *AuthError:
		return errors.WrapError(err, errors.CategoryPublish, "authentication to the publish remote failed").
			WithContext("op", op).WithContext("url", url).
			WithContext("hint", "check the token environment variable").Fatal().Build()
	case *NotFoundError:
		return errors.WrapError(err, errors.CategoryPublish, "publish remote does not exist").
			WithContext("op", op).WithContext("url", url).Fatal().UserAction().Build()
	case *UnsupportedProtocolError:
		return errors.WrapError(err, errors.CategoryConfig, "publish remote uses an unsupported protocol").
			WithContext("op", op).WithContext("url", url).Build()
	case *RemoteDivergedError:
		return errors.WrapError(err, errors.CategoryPublish, "publish branch changed on the remote").
			WithContext("op", op).WithContext("url", url).WithContext("branch", e.Branch).UserAction().Build()
	}
	return errors.WrapError(err, errors.CategoryPublish, "git operation failed").
		WithContext("op", op).WithContext("url", url).Retryable().Build()
}
