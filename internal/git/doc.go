// Package git wraps the go-git operations used when publishing a site to a branch.
//
// This package handles:
//   - Cloning a single branch, or starting an orphan branch when the remote lacks it
//   - Replacing the worktree with a directory and staging additions and deletions
//   - Committing with a fixed signature and pushing with HTTP basic auth
//   - Retry logic for transient push failures
//   - Typed errors for structured error handling
package git
