// Package integration runs full generations against source fixtures and
// compares the published output with golden snapshots.
package integration

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/generator"
	"git.home.luguber.info/inful/docgen/internal/storage"
)

// Snapshot is the golden form of one published version.
type Snapshot struct {
	Files    []string `json:"files"`
	Versions []string `json:"versions"`
	TOC      any      `json:"toc"`
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// scenario describes one golden run.
type scenario struct {
	source   string
	golden   string
	version  string
	sort     string
	existing []string
}

func runGoldenTest(t *testing.T, sc scenario, updateGolden bool) {
	t.Helper()

	source, err := filepath.Abs(sc.source)
	require.NoError(t, err)
	output := t.TempDir()
	for _, dir := range sc.existing {
		require.NoError(t, os.MkdirAll(filepath.Join(output, dir), 0o750))
	}

	cfg := &config.Config{
		Mode:     config.ModeLocal,
		Version:  sc.version,
		Source:   config.SourceConfig{Path: source},
		Output:   config.OutputConfig{Path: output, Clean: true},
		Versions: config.VersionsConfig{Sort: sc.sort},
	}
	store, err := storage.NewLocalStore(output)
	require.NoError(t, err)

	report, err := generator.New(cfg, store).
		WithClock(func() time.Time { return fixedNow }).
		Generate(t.Context())
	require.NoError(t, err)
	require.Equal(t, generator.StatusSuccess, report.Status)

	actual := captureSnapshot(t, output, sc.version)
	verifySnapshot(t, actual, sc.golden, updateGolden)
}

// captureSnapshot reads the published files, the version index and the
// table of contents. Update dates are dropped because they follow file
// modification times.
func captureSnapshot(t *testing.T, output, version string) Snapshot {
	t.Helper()

	var snap Snapshot
	err := filepath.WalkDir(output, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(output, p)
		if err != nil {
			return err
		}
		snap.Files = append(snap.Files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(snap.Files)

	// #nosec G304 -- test output directory
	index, err := os.ReadFile(filepath.Join(output, "versions.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(index, &snap.Versions))

	// #nosec G304 -- test output directory
	toc, err := os.ReadFile(filepath.Join(output, version, "toc.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(toc, &snap.TOC))
	stripUpdateDates(snap.TOC)
	return snap
}

func stripUpdateDates(v any) {
	switch node := v.(type) {
	case map[string]any:
		delete(node, "updateDate")
		for _, child := range node {
			stripUpdateDates(child)
		}
	case []any:
		for _, child := range node {
			stripUpdateDates(child)
		}
	}
}

// verifySnapshot compares actual with the golden file, or rewrites the file
// when updateGolden is set.
func verifySnapshot(t *testing.T, actual Snapshot, goldenPath string, updateGolden bool) {
	t.Helper()

	if updateGolden {
		data, err := json.MarshalIndent(actual, "", "  ")
		require.NoError(t, err, "failed to marshal snapshot")
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o750))
		require.NoError(t, os.WriteFile(goldenPath, append(data, '\n'), 0o600), "failed to write golden file")
		t.Logf("Updated golden file: %s", goldenPath)
		return
	}

	// #nosec G304 -- test utility reading golden file from testdata
	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "failed to read golden file: %s", goldenPath)

	var expected Snapshot
	require.NoError(t, json.Unmarshal(goldenData, &expected), "failed to parse golden snapshot")

	// Round-trip actual so both sides use the same generic JSON types.
	data, err := json.Marshal(actual)
	require.NoError(t, err)
	var normalized Snapshot
	require.NoError(t, json.Unmarshal(data, &normalized))

	require.Equal(t, expected.Files, normalized.Files, "published files differ")
	require.Equal(t, expected.Versions, normalized.Versions, "version index differs")
	require.Equal(t, expected.TOC, normalized.TOC, "table of contents differs")
}
