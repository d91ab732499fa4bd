package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreWriteAndCopy(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "out")
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "page.md")
	require.NoError(t, os.WriteFile(src, []byte("# Page"), 0o600))

	require.NoError(t, store.CopyFile(ctx, src, "/1.0.0/guide/page.md"))
	require.NoError(t, store.WriteText(ctx, `["1.0.0"]`, "/versions.json"))

	data, err := os.ReadFile(filepath.Join(root, "1.0.0", "guide", "page.md"))
	require.NoError(t, err)
	require.Equal(t, "# Page", string(data))

	data, err = os.ReadFile(filepath.Join(root, "versions.json"))
	require.NoError(t, err)
	require.Equal(t, `["1.0.0"]`, string(data))

	require.NoError(t, store.WriteText(ctx, `[]`, "versions.json"))
	data, err = os.ReadFile(filepath.Join(root, "versions.json"))
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data), "writes overwrite")
}

func TestLocalStoreEnsureAndList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	names, err := store.ListDirNames(ctx, "/")
	require.NoError(t, err)
	require.Empty(t, names)

	for _, dir := range []string{"2.0.0", "1.0.0", "static/1.0.0", "2.0.0"} {
		require.NoError(t, store.EnsureDir(ctx, dir))
	}
	require.NoError(t, store.WriteText(ctx, "x", "versions.json"))

	names, err = store.ListDirNames(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.0", "2.0.0", "static"}, names)

	names, err = store.ListDirNames(ctx, "does/not/exist")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestLocalStoreClearDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, store.WriteText(ctx, "a", "1.0.0/a.md"))
	require.NoError(t, store.WriteText(ctx, "b", "1.0.0/sub/b.md"))
	require.NoError(t, store.WriteText(ctx, "keep", "2.0.0/a.md"))

	require.NoError(t, store.ClearDir(ctx, "1.0.0"))
	require.NoError(t, store.ClearDir(ctx, "missing"))

	entries, err := os.ReadDir(filepath.Join(root, "1.0.0"))
	require.NoError(t, err)
	require.Empty(t, entries)
	require.FileExists(t, filepath.Join(root, "2.0.0", "a.md"))
}

func TestLocalStoreCannotEscapeRoot(t *testing.T) {
	ctx := context.Background()
	parent := t.TempDir()
	root := filepath.Join(parent, "out")
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, store.WriteText(ctx, "x", "../../escape.txt"))
	require.FileExists(t, filepath.Join(root, "escape.txt"))
	require.NoFileExists(t, filepath.Join(parent, "escape.txt"))
}

func TestKey(t *testing.T) {
	cases := map[string]string{
		"/":                "",
		"":                 "",
		"/1.0.0/toc.json":  "1.0.0/toc.json",
		"static/1.0.0/":    "static/1.0.0",
		"/a/../b":          "b",
		"../../etc/passwd": "etc/passwd",
	}
	for in, want := range cases {
		require.Equal(t, want, Key(in), in)
	}
}
