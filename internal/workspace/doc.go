// Package workspace manages scratch directories: the staging tree of a build and the
// checkout used when publishing.
//
// A Manager creates a uniquely named directory next to its final destination so that
// the result can be moved into place with a rename on the same filesystem.
package workspace
