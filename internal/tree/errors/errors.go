// Package errors provides sentinel errors for documentation tree construction.
package errors

import "errors"

var (
	// ErrSourceRead indicates listing or reading from the source tree failed.
	ErrSourceRead = errors.New("source read failed")

	// ErrControlFile indicates a redirects.json or toc.json file could not be used.
	ErrControlFile = errors.New("invalid control file")

	// ErrSlugCollision indicates two siblings resolve to the same slug.
	ErrSlugCollision = errors.New("slug collision")

	// ErrEmptySlug indicates a title or file name produced an empty slug.
	ErrEmptySlug = errors.New("empty slug")

	// ErrRootRedirect indicates the source root declares a directory-level redirect.
	ErrRootRedirect = errors.New("source root cannot be a redirect")
)
