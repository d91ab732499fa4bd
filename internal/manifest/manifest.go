// Package manifest writes the table of contents for a version and the
// version index at the store root.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/storage"
	"git.home.luguber.info/inful/docgen/internal/tree"
	"git.home.luguber.info/inful/docgen/internal/versioning"
)

const (
	// TableOfContentsFile is written at the root of each version.
	TableOfContentsFile = "toc.json"
	// VersionIndexFile is written at the store root.
	VersionIndexFile = "/versions.json"
)

// Emitter serializes generated manifests to a store.
type Emitter struct {
	store storage.Store
	order versioning.SortOrder
}

// NewEmitter creates an Emitter writing to store and ordering the version
// index by order.
func NewEmitter(store storage.Store, order versioning.SortOrder) *Emitter {
	if order == "" {
		order = versioning.SortLexical
	}
	return &Emitter{store: store, order: order}
}

// TableOfContentsPath returns where the table of contents for root is written.
func TableOfContentsPath(root *tree.Node) string {
	return path.Join(root.URL, TableOfContentsFile)
}

// Marshal renders v as indented JSON.
func Marshal(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteTableOfContents writes root to {root.URL}/toc.json.
func (e *Emitter) WriteTableOfContents(ctx context.Context, root *tree.Node) error {
	content, err := Marshal(root)
	if err != nil {
		return fmt.Errorf("serialize table of contents: %w", err)
	}
	dest := TableOfContentsPath(root)
	if err := e.store.WriteText(ctx, content, dest); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Wrote table of contents", logfields.Destination(dest), logfields.Nodes(root.Count()))
	return nil
}

// ListVersions returns the version directories at the store root, newest first.
func (e *Emitter) ListVersions(ctx context.Context) ([]string, error) {
	names, err := e.store.ListDirNames(ctx, "/")
	if err != nil {
		return nil, err
	}
	return versioning.SortDescending(names, e.order), nil
}

// UpdateVersionIndex rewrites /versions.json from the version directories
// present at the store root and returns the written list.
func (e *Emitter) UpdateVersionIndex(ctx context.Context) ([]string, error) {
	versions, err := e.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	content, err := Marshal(versions)
	if err != nil {
		return nil, fmt.Errorf("serialize version index: %w", err)
	}
	if err := e.store.WriteText(ctx, content, VersionIndexFile); err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "Wrote version index", logfields.Destination(VersionIndexFile), slog.Any("versions", versions))
	return versions, nil
}
