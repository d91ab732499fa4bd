// Package testutil holds fixtures and assertions shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// WriteTree creates files below a fresh temporary directory and returns it.
// Keys are slash-separated relative paths; parent directories are created.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	AddFiles(t, root, files)
	return root
}

// AddFiles writes files below root.
func AddFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
}

// FileAssertions checks file system state below a base directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates assertions rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.baseDir, filepath.FromSlash(rel))
}

// FileExists asserts that rel is a regular file.
func (fa *FileAssertions) FileExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.FileExists(fa.t, fa.path(rel))
	return fa
}

// NoFileExists asserts that rel does not exist as a file.
func (fa *FileAssertions) NoFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.NoFileExists(fa.t, fa.path(rel))
	return fa
}

// DirExists asserts that rel is a directory.
func (fa *FileAssertions) DirExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.DirExists(fa.t, fa.path(rel))
	return fa
}

// NoDirExists asserts that rel does not exist as a directory.
func (fa *FileAssertions) NoDirExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.NoDirExists(fa.t, fa.path(rel))
	return fa
}

// FileContains asserts that rel exists and contains want.
func (fa *FileAssertions) FileContains(rel, want string) *FileAssertions {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	if assert.NoError(fa.t, err) {
		assert.True(fa.t, strings.Contains(string(data), want), "%s does not contain %q", rel, want)
	}
	return fa
}

// ReadFile returns the content of rel, failing the test when unreadable.
func (fa *FileAssertions) ReadFile(rel string) string {
	fa.t.Helper()
	data, err := os.ReadFile(fa.path(rel))
	require.NoError(fa.t, err)
	return string(data)
}
