// Package storage publishes generated documentation to a destination store.
//
// Paths passed to a Store are virtual, slash-separated and relative to the
// store root. A leading slash is ignored and ".." cannot escape the root.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrUnknownMode is returned by New for an unsupported storage mode.
var ErrUnknownMode = errors.New("unknown storage mode")

// Store is the destination of a generation run.
type Store interface {
	// EnsureDir creates dir if needed. Existing directories are not an error.
	EnsureDir(ctx context.Context, dir string) error
	// ClearDir removes everything below dir. A missing dir is not an error.
	ClearDir(ctx context.Context, dir string) error
	// ListDirNames returns the names of the immediate subdirectories of dir, sorted.
	ListDirNames(ctx context.Context, dir string) ([]string, error)
	// CopyFile streams the local file src to dest, replacing any existing file.
	CopyFile(ctx context.Context, src, dest string) error
	// WriteText writes UTF-8 content to dest, replacing any existing file.
	WriteText(ctx context.Context, content, dest string) error
	// Describe names the store for logs, e.g. "local:/srv/docs".
	Describe() string
}

// Key normalizes a virtual path to a root-relative key without leading or
// trailing slashes. The store root is "".
func Key(virtual string) string {
	return strings.TrimPrefix(path.Clean("/"+virtual), "/")
}
