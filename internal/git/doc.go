// Package git checks documentation sources out of a Git repository.
//
// A checkout is a shallow, single-branch clone of one ref. Bare names are
// tried as a tag first and as a branch second so that a release version
// (tag v1.2.3) and a moving branch (main) can both be used as sources.
package git
