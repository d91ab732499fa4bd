package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	terrors "git.home.luguber.info/inful/docgen/internal/tree/errors"
)

// Entry describes a file or directory in the source tree.
type Entry struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Source is the builder's view of the authoring tree. Modification times are
// read through it so builds never consult the filesystem directly.
type Source interface {
	// ReadDir lists the immediate files and subdirectories of path, each
	// sorted by name.
	ReadDir(path string) (files, dirs []Entry, err error)
	// ReadFile returns the contents of a file.
	ReadFile(path string) ([]byte, error)
}

// OSSource reads the local filesystem.
type OSSource struct{}

// ReadDir implements Source. Symlinks are resolved; broken links are skipped.
func (OSSource) ReadDir(path string) (files, dirs []Entry, err error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", terrors.ErrSourceRead, path, err)
	}
	for _, de := range entries {
		full := filepath.Join(path, de.Name())
		var info fs.FileInfo
		if de.Type()&fs.ModeSymlink != 0 {
			info, err = os.Stat(full)
			if err != nil {
				continue
			}
		} else {
			info, err = de.Info()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %w", terrors.ErrSourceRead, full, err)
			}
		}
		e := Entry{Name: de.Name(), Path: full, ModTime: info.ModTime().UTC()}
		switch {
		case info.IsDir():
			dirs = append(dirs, e)
		case info.Mode().IsRegular():
			files = append(files, e)
		}
	}
	return files, dirs, nil
}

// ReadFile implements Source.
func (OSSource) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", terrors.ErrSourceRead, path, err)
	}
	return data, nil
}
