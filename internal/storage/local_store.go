package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// LocalStore writes to a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at root. The directory is created on
// first write.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output path %s: %w", root, err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *LocalStore) Root() string { return s.root }

// Describe implements Store.
func (s *LocalStore) Describe() string { return "local:" + s.root }

func (s *LocalStore) resolve(virtual string) string {
	return filepath.Join(s.root, filepath.FromSlash(Key(virtual)))
}

// EnsureDir implements Store.
func (s *LocalStore) EnsureDir(_ context.Context, dir string) error {
	if err := os.MkdirAll(s.resolve(dir), 0o750); err != nil {
		return fmt.Errorf("ensure directory %s: %w", dir, err)
	}
	return nil
}

// ClearDir implements Store. The directory itself is kept.
func (s *LocalStore) ClearDir(ctx context.Context, dir string) error {
	full := s.resolve(dir)
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(full, e.Name())); err != nil {
			return fmt.Errorf("clear directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListDirNames implements Store.
func (s *LocalStore) ListDirNames(_ context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(s.resolve(dir))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CopyFile implements Store.
func (s *LocalStore) CopyFile(_ context.Context, src, dest string) error {
	target := s.resolve(dest)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("copy %s: %w", dest, err)
	}
	// #nosec G304 -- src comes from the configured source tree
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	// #nosec G302 G304 -- published documentation is world-readable
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("copy %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("copy %s: %w", dest, err)
	}
	return nil
}

// WriteText implements Store.
func (s *LocalStore) WriteText(_ context.Context, content, dest string) error {
	target := s.resolve(dest)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	// #nosec G306 -- published documentation is world-readable
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
