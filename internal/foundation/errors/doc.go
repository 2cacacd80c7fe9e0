// Package errors provides the classified error primitives used across docsite.
//
// A ClassifiedError carries a category (config, nav, links, build, ...), a severity,
// a retry strategy and structured context. The CLI adapter turns categories into
// process exit codes so CI jobs can tell a malformed configuration apart from a
// dangling navigation reference.
//
// Example usage:
//
//	err := errors.NavError("navigation references missing pages").
//		WithContext("missing", []string{"guide/setup.md"}).
//		Build()
package errors
