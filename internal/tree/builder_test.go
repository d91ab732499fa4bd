package tree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	terrors "git.home.luguber.info/inful/docgen/internal/tree/errors"
)

var (
	fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	modTime  = time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(full, modTime, modTime))
	return full
}

func newTestBuilder() *Builder {
	return NewBuilder(OSSource{}, WithClock(func() time.Time { return fixedNow }))
}

func build(t *testing.T, root string) *Result {
	t.Helper()
	res, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
	require.NoError(t, err)
	return res
}

func childURLs(n *Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.URL)
	}
	return out
}

func copyDests(p Plan) map[string]string {
	out := map[string]string{}
	for _, op := range p {
		if op.Kind == OpCopy {
			out[op.Dest] = filepath.Base(op.Source)
		}
	}
	return out
}

func TestBuildEndToEndScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home")
	writeFile(t, root, "overview.md", "# Overview")
	writeFile(t, root, "logo.png", "png")
	writeFile(t, root, "redirects.json", `{"Old Page": "/v1/new-page"}`)
	writeFile(t, root, "toc.json", `["Overview"]`)

	res := build(t, root)

	require.Equal(t, "Docs", res.Root.Title)
	require.Equal(t, "/1.0.0", res.Root.URL)
	require.Equal(t, "/1.0.0/index.md", res.Root.DocumentFilePath)
	require.Equal(t, modTime, res.Root.UpdateDate)
	require.Equal(t, []string{"/1.0.0/overview"}, childURLs(res.Root))
	require.Equal(t, "Overview", res.Root.Children[0].Title)
	require.Equal(t, "/1.0.0/overview.md", res.Root.Children[0].DocumentFilePath)

	require.Equal(t, map[string]string{
		"/1.0.0/index.md":       "index.md",
		"/1.0.0/overview.md":    "overview.md",
		"static/1.0.0/logo.png": "logo.png",
	}, copyDests(res.Plan))
	require.Equal(t, 1, res.Stats.OmittedByTOC)
	require.Equal(t, 1, res.Stats.RedirectNodes)
	require.Equal(t, 2, res.Stats.ControlFiles)
}

func TestBuildRootUsesClockWithoutIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")

	res := build(t, root)
	require.Equal(t, fixedNow, res.Root.UpdateDate)
	require.Empty(t, res.Root.DocumentFilePath)
}

func TestBuildDirectoryWildcardRedirect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "legacy/redirects.json", `{"*": "/target"}`)
	writeFile(t, root, "legacy/page.md", "p")
	writeFile(t, root, "legacy/img.png", "i")
	writeFile(t, root, "legacy/deeper/more.md", "m")

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/a", "/1.0.0/legacy"}, childURLs(res.Root))
	legacy := res.Root.Children[1]
	require.Equal(t, "/target", legacy.RedirectTo)
	require.Empty(t, legacy.Children)
	require.Empty(t, legacy.DocumentFilePath)
	require.Equal(t, modTime, legacy.UpdateDate)

	for dest := range copyDests(res.Plan) {
		require.NotContains(t, dest, "legacy", "nothing under a redirected directory is copied")
	}
	require.Equal(t, 1, res.Stats.DirectoryRedirects)
}

func TestBuildRootWildcardRedirectFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "redirects.json", `{"*": "/elsewhere"}`)

	_, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
	require.ErrorIs(t, err, terrors.ErrRootRedirect)
}

func TestBuildIndexPrecedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "home")
	writeFile(t, root, "guide/INDEX.md", "guide home")
	writeFile(t, root, "guide/step.md", "step")
	idx := filepath.Join(root, "guide", "INDEX.md")
	later := modTime.Add(time.Hour)
	require.NoError(t, os.Chtimes(idx, later, later))

	res := build(t, root)

	require.Len(t, res.Root.Children, 1)
	guide := res.Root.Children[0]
	require.Equal(t, "/1.0.0/guide/index.md", guide.DocumentFilePath)
	require.Equal(t, later, guide.UpdateDate)
	require.Equal(t, []string{"/1.0.0/guide/step"}, childURLs(guide))
	require.Equal(t, 2, res.Stats.IndexPages)
}

func TestBuildRedirectPrecedenceOverContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "old-page.md", "old")
	writeFile(t, root, "other.md", "other")
	writeFile(t, root, "redirects.json", `{"Old Page": "/new"}`)

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/old-page", "/1.0.0/other"}, childURLs(res.Root))
	redirect := res.Root.Children[0]
	require.Equal(t, "Old Page", redirect.Title)
	require.Equal(t, "/new", redirect.RedirectTo)
	require.Empty(t, redirect.DocumentFilePath)
	require.Contains(t, copyDests(res.Plan), "/1.0.0/old-page.md", "shadowed content is still copied")
	require.Equal(t, 1, res.Stats.ShadowedByRedirect)
}

func TestBuildRedirectShadowsSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "redirects.json", `{"API": "https://api.example.com"}`)
	writeFile(t, root, "api/intro.md", "intro")

	res := build(t, root)

	require.Len(t, res.Root.Children, 1)
	require.Equal(t, "https://api.example.com", res.Root.Children[0].RedirectTo)
	require.Contains(t, copyDests(res.Plan), "/1.0.0/api/intro.md")
}

func TestBuildTableOfContentsFiltersAndOrders(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "c.md", "c")
	writeFile(t, root, "toc.json", `["B", "Missing", "A", "b"]`)

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/b", "/1.0.0/a"}, childURLs(res.Root))
	require.Contains(t, copyDests(res.Plan), "/1.0.0/c.md", "unlisted content is still copied")
	require.Equal(t, 1, res.Stats.OmittedByTOC)
}

func TestBuildAlphabeticalOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "zeta.md", "z")
	writeFile(t, root, "Alpha.md", "a")
	writeFile(t, root, "beta/page.md", "p")

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/alpha", "/1.0.0/beta", "/1.0.0/zeta"}, childURLs(res.Root))
}

func TestBuildPrunesStaticOnlySubtrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "images/diagram one.svg", "<svg/>")
	writeFile(t, root, "images/settings.json", `{}`)

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/a"}, childURLs(res.Root))
	require.Contains(t, copyDests(res.Plan), "static/1.0.0/images/diagram-one.svg")
	require.Equal(t, 1, res.Stats.PrunedDirectories)
}

func TestBuildDirectoryWithoutFilesContributesNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "outer/inner/page.md", "p")

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/a"}, childURLs(res.Root))
	require.NotContains(t, copyDests(res.Plan), "/1.0.0/outer/inner/page.md")
}

func TestBuildSubdirectoryNodes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "home")
	writeFile(t, root, "Getting Started/Install.md", "install")
	dir := filepath.Join(root, "Getting Started")
	dirTime := modTime.Add(-time.Hour)
	require.NoError(t, os.Chtimes(dir, dirTime, dirTime))

	res := build(t, root)

	require.Len(t, res.Root.Children, 1)
	gs := res.Root.Children[0]
	require.Equal(t, "Getting Started", gs.Title)
	require.Equal(t, "/1.0.0/getting-started", gs.URL)
	require.Equal(t, dirTime, gs.UpdateDate)
	require.Empty(t, gs.DocumentFilePath)
	require.Equal(t, "/1.0.0/getting-started/install.md", gs.Children[0].DocumentFilePath)

	require.Contains(t, res.Plan, Op{Kind: OpEnsureDir, Dest: "/1.0.0/getting-started"})
}

func TestBuildExtensionsAreCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Readme.MD", "r")
	writeFile(t, root, "Photo.JPG", "j")
	writeFile(t, root, "Settings.JSON", `{}`)

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/readme"}, childURLs(res.Root))
	require.Equal(t, map[string]string{
		"/1.0.0/readme.md":       "Readme.MD",
		"static/1.0.0/photo.jpg": "Photo.JPG",
	}, copyDests(res.Plan))
}

func TestBuildSkipsHiddenDirectoriesOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, ".nojekyll", "")
	writeFile(t, root, ".git/HEAD.md", "ref")
	writeFile(t, root, ".git/objects/pack.png", "p")

	res := build(t, root)

	require.Equal(t, []string{"/1.0.0/a"}, childURLs(res.Root))
	require.Equal(t, map[string]string{
		"/1.0.0/a.md":            "a.md",
		"static/1.0.0/.nojekyll": ".nojekyll",
	}, copyDests(res.Plan))
	require.Equal(t, 1, res.Stats.SkippedHidden)
}

func TestBuildStaticAssetWithoutSlugKeepsSanitisedName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "i")
	writeFile(t, root, "_.png", "p")
	writeFile(t, root, "Ä B.PNG", "p")
	writeFile(t, root, ".htaccess", "deny")

	res := build(t, root)

	require.Equal(t, "/1.0.0/index.md", res.Root.DocumentFilePath)
	require.Equal(t, map[string]string{
		"/1.0.0/index.md":        "index.md",
		"static/1.0.0/_.png":     "_.png",
		"static/1.0.0/a-b.png":   "Ä B.PNG",
		"static/1.0.0/.htaccess": ".htaccess",
	}, copyDests(res.Plan))
	require.Equal(t, 3, res.Stats.StaticFiles)
}

func TestBuildSlugCollision(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Getting Started.md", "a")
	writeFile(t, root, "getting-started.md", "b")

	_, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
	require.ErrorIs(t, err, terrors.ErrSlugCollision)
	require.Contains(t, err.Error(), "getting-started")
}

func TestBuildContentCollidesWithSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guide.md", "a")
	writeFile(t, root, "Guide/page.md", "b")

	_, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
	require.ErrorIs(t, err, terrors.ErrSlugCollision)
}

func TestBuildEmptySlug(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "!!!.md", "a")

	_, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
	require.ErrorIs(t, err, terrors.ErrEmptySlug)
}

func TestBuildMalformedControlFiles(t *testing.T) {
	for name, file := range map[string]string{"redirects": "redirects.json", "toc": "toc.json"} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "a.md", "a")
			writeFile(t, root, file, `{not json`)

			_, err := newTestBuilder().Build(context.Background(), root, "1.0.0")
			require.ErrorIs(t, err, terrors.ErrControlFile)
		})
	}
}

func TestBuildMissingSourceRoot(t *testing.T) {
	_, err := newTestBuilder().Build(context.Background(), filepath.Join(t.TempDir(), "nope"), "1.0.0")
	require.ErrorIs(t, err, terrors.ErrSourceRead)
}

func TestBuildHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestBuilder().Build(ctx, root, "1.0.0")
	require.ErrorIs(t, err, context.Canceled)
}

func TestBuildIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "b")
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "sub/c.md", "c")
	writeFile(t, root, "sub/d.png", "d")

	first := build(t, root)
	second := build(t, root)
	require.Equal(t, first.Plan, second.Plan)
	require.Equal(t, first.Root, second.Root)
	require.Equal(t, first.Plan.Copies(), first.Stats.Files())
}
