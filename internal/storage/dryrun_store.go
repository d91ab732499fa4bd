package storage

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// DryRunStore logs mutating operations instead of performing them. Listings
// are answered by the wrapped store so version indexes reflect reality.
type DryRunStore struct {
	inner Store
	log   *slog.Logger
}

// NewDryRunStore wraps inner.
func NewDryRunStore(inner Store, logger *slog.Logger) *DryRunStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunStore{inner: inner, log: logger.With(slog.Bool("dry_run", true))}
}

// Describe implements Store.
func (d *DryRunStore) Describe() string { return "dry-run:" + d.inner.Describe() }

// EnsureDir implements Store.
func (d *DryRunStore) EnsureDir(ctx context.Context, dir string) error {
	d.log.DebugContext(ctx, "Would ensure directory", logfields.Destination(dir))
	return nil
}

// ClearDir implements Store.
func (d *DryRunStore) ClearDir(ctx context.Context, dir string) error {
	d.log.InfoContext(ctx, "Would clear directory", logfields.Destination(dir))
	return nil
}

// ListDirNames implements Store.
func (d *DryRunStore) ListDirNames(ctx context.Context, dir string) ([]string, error) {
	return d.inner.ListDirNames(ctx, dir)
}

// CopyFile implements Store.
func (d *DryRunStore) CopyFile(ctx context.Context, src, dest string) error {
	d.log.DebugContext(ctx, "Would copy file", logfields.Source(src), logfields.Destination(dest))
	return nil
}

// WriteText implements Store.
func (d *DryRunStore) WriteText(ctx context.Context, content, dest string) error {
	d.log.InfoContext(ctx, "Would write file", logfields.Destination(dest), slog.Int("bytes", len(content)))
	return nil
}
