// Package tree builds the navigable documentation tree for one version from
// an authoring directory.
//
// A build is a pure function of the source tree: it returns the node tree
// together with the ordered storage operations needed to publish it. Nothing
// is written while the tree is being built.
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docgen/internal/control"
	"git.home.luguber.info/inful/docgen/internal/logfields"
	"git.home.luguber.info/inful/docgen/internal/slug"
	terrors "git.home.luguber.info/inful/docgen/internal/tree/errors"
	"git.home.luguber.info/inful/docgen/internal/util/sets"
)

const (
	// ContentExtension marks markdown content files.
	ContentExtension = ".md"
	// ControlExtension marks control files, which never reach the output.
	ControlExtension = ".json"
	// StaticPrefix is the destination root for static assets.
	StaticPrefix = "static"
	// IndexSlug is the reserved slug of a directory's own page.
	IndexSlug = "index"
	// RootTitle is the title of every version's root node.
	RootTitle = "Docs"
)

// Result is the outcome of a build.
type Result struct {
	Root  *Node
	Plan  Plan
	Stats Stats
}

// Builder turns a source directory into a Result.
type Builder struct {
	src   Source
	clock func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the clock used for the root node's update date.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) { b.clock = clock }
}

// NewBuilder creates a Builder reading from src.
func NewBuilder(src Source, opts ...Option) *Builder {
	b := &Builder{src: src, clock: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RootURL returns the url of a version's root node.
func RootURL(version string) string {
	return "/" + version
}

// StaticDir returns the static asset directory mirroring a node url.
func StaticDir(url string) string {
	return path.Join(StaticPrefix, url)
}

// Build walks sourceRoot and returns the tree for version.
func (b *Builder) Build(ctx context.Context, sourceRoot, version string) (*Result, error) {
	root := &Node{
		Title:      RootTitle,
		URL:        RootURL(version),
		UpdateDate: b.clock().UTC(),
		Children:   []*Node{},
	}
	res, err := b.buildDirectory(ctx, sourceRoot, root)
	if err != nil {
		return nil, err
	}
	if res.node.IsRedirect() {
		return nil, fmt.Errorf("%w: %s", terrors.ErrRootRedirect, filepath.Join(sourceRoot, control.RedirectsFile))
	}
	slog.Debug("Built documentation tree",
		logfields.Version(version),
		logfields.Nodes(res.node.Count()),
		logfields.Files(res.stats.Files()))
	return &Result{Root: res.node, Plan: res.plan, Stats: res.stats}, nil
}

type dirResult struct {
	node  *Node
	plan  Plan
	stats Stats
}

// siblings accumulates the child nodes of one directory keyed by slug.
type siblings struct {
	bySlug map[string]*Node
	slugs  []string
}

func newSiblings() *siblings {
	return &siblings{bySlug: make(map[string]*Node)}
}

func (s *siblings) add(key string, n *Node) error {
	if prev, ok := s.bySlug[key]; ok {
		return fmt.Errorf("%w: %q and %q both resolve to %q", terrors.ErrSlugCollision, prev.Title, n.Title, key)
	}
	s.bySlug[key] = n
	s.slugs = append(s.slugs, key)
	return nil
}

// buildDirectory processes one directory. node arrives with its title, url and
// default update date set and is returned with children filled in.
func (b *Builder) buildDirectory(ctx context.Context, dir string, node *Node) (*dirResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &dirResult{node: node}
	res.stats.Directories++

	files, dirs, err := b.src.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	dirs, skipped := withoutHidden(dirs)
	res.stats.SkippedHidden += skipped
	if len(files) == 0 {
		return res, nil
	}

	set := newSiblings()
	redirected, err := b.resolveRedirects(dir, files, res, set)
	if err != nil {
		return nil, err
	}
	if node.IsRedirect() {
		return res, nil
	}
	if err := b.classifyFiles(files, redirected, res, set); err != nil {
		return nil, err
	}
	if err := b.buildSubdirectories(ctx, dirs, redirected, res, set); err != nil {
		return nil, err
	}

	children, err := b.order(files, set, &res.stats)
	if err != nil {
		return nil, err
	}
	node.Children = children
	return res, nil
}

// resolveRedirects applies the directory's redirects.json. A wildcard rule
// turns the directory node itself into a redirect. Otherwise every rule
// becomes a redirect child and the returned set holds the shadowed slugs.
func (b *Builder) resolveRedirects(dir string, files []Entry, res *dirResult, set *siblings) (sets.Set[string], error) {
	redirected := sets.New[string]()
	file, ok := findFile(files, control.RedirectsFile)
	if !ok {
		return redirected, nil
	}
	data, err := b.src.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	rules, err := control.ParseRedirects(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", terrors.ErrControlFile, file.Path, err)
	}

	node := res.node
	if rules.IsDirectoryRedirect() {
		node.RedirectTo = rules.Directory
		node.UpdateDate = file.ModTime
		res.stats.DirectoryRedirects++
		slog.Debug("Directory redirect", logfields.URL(node.URL), slog.String("target", rules.Directory))
		return redirected, nil
	}

	for _, rule := range rules.Rules {
		key := slug.Make(rule.Title)
		if key == "" {
			return nil, fmt.Errorf("%w: redirect title %q in %s", terrors.ErrEmptySlug, rule.Title, file.Path)
		}
		if err := set.add(key, &Node{
			Title:      rule.Title,
			URL:        path.Join(node.URL, key),
			RedirectTo: rule.Target,
			UpdateDate: file.ModTime,
			Children:   []*Node{},
		}); err != nil {
			return nil, fmt.Errorf("%s: %w", file.Path, err)
		}
		redirected.Add(key)
		res.stats.RedirectNodes++
	}
	return redirected, nil
}

// classifyFiles plans a copy for every content and static file and registers
// content nodes. An index page becomes the directory's own document.
func (b *Builder) classifyFiles(files []Entry, redirected sets.Set[string], res *dirResult, set *siblings) error {
	node := res.node
	staticDir := StaticDir(node.URL)
	staticDirPlanned := false

	for _, f := range files {
		ext := filepath.Ext(f.Name)
		lowerExt := strings.ToLower(ext)
		if lowerExt == ControlExtension {
			res.stats.ControlFiles++
			continue
		}

		title := strings.TrimSuffix(f.Name, ext)
		key := slug.Make(title)

		if lowerExt != ContentExtension {
			if !staticDirPlanned {
				res.plan = append(res.plan, Op{Kind: OpEnsureDir, Dest: staticDir})
				staticDirPlanned = true
			}
			res.plan = append(res.plan, Op{Kind: OpCopy, Class: ClassStatic, Source: f.Path, Dest: path.Join(staticDir, staticName(f.Name, key, lowerExt))})
			res.stats.StaticFiles++
			continue
		}

		if key == "" {
			return fmt.Errorf("%w: file %s", terrors.ErrEmptySlug, f.Path)
		}
		dest := path.Join(node.URL, key+lowerExt)
		res.plan = append(res.plan, Op{Kind: OpCopy, Class: ClassContent, Source: f.Path, Dest: dest})
		res.stats.ContentFiles++

		if redirected.Has(key) {
			res.stats.ShadowedByRedirect++
			slog.Debug("Content shadowed by redirect", logfields.Source(f.Path), logfields.URL(path.Join(node.URL, key)))
			continue
		}
		if key == IndexSlug {
			node.DocumentFilePath = dest
			node.UpdateDate = f.ModTime
			res.stats.IndexPages++
			continue
		}
		if err := set.add(key, &Node{
			Title:            title,
			URL:              path.Join(node.URL, key),
			DocumentFilePath: dest,
			UpdateDate:       f.ModTime,
			Children:         []*Node{},
		}); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
		res.stats.ContentNodes++
	}
	return nil
}

// buildSubdirectories recurses into each subdirectory and keeps the ones that
// ended up with navigable content.
func (b *Builder) buildSubdirectories(ctx context.Context, dirs []Entry, redirected sets.Set[string], res *dirResult, set *siblings) error {
	for _, d := range dirs {
		key := slug.Make(d.Name)
		if key == "" {
			return fmt.Errorf("%w: directory %s", terrors.ErrEmptySlug, d.Path)
		}
		child := &Node{
			Title:      d.Name,
			URL:        path.Join(res.node.URL, key),
			UpdateDate: d.ModTime,
			Children:   []*Node{},
		}
		res.plan = append(res.plan, Op{Kind: OpEnsureDir, Dest: child.URL})

		sub, err := b.buildDirectory(ctx, d.Path, child)
		if err != nil {
			return err
		}
		res.plan = append(res.plan, sub.plan...)
		res.stats.Add(sub.stats)

		switch {
		case !child.HasContent():
			res.stats.PrunedDirectories++
		case redirected.Has(key):
			res.stats.ShadowedByRedirect++
			slog.Debug("Directory shadowed by redirect", logfields.Source(d.Path), logfields.URL(child.URL))
		default:
			if err := set.add(key, child); err != nil {
				return fmt.Errorf("%s: %w", d.Path, err)
			}
		}
	}
	return nil
}

// order returns the directory's children. A toc.json lists the children to
// keep, in order; without one every child is kept, sorted by title.
func (b *Builder) order(files []Entry, set *siblings, stats *Stats) ([]*Node, error) {
	file, ok := findFile(files, control.TableOfContentsFile)
	if !ok {
		children := make([]*Node, 0, len(set.slugs))
		for _, key := range set.slugs {
			children = append(children, set.bySlug[key])
		}
		sort.SliceStable(children, func(i, j int) bool {
			return lessByTitle(children[i], children[j])
		})
		return children, nil
	}

	data, err := b.src.ReadFile(file.Path)
	if err != nil {
		return nil, err
	}
	titles, err := control.ParseTableOfContents(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", terrors.ErrControlFile, file.Path, err)
	}

	children := make([]*Node, 0, len(titles))
	used := make(sets.Set[string], len(titles))
	for _, title := range titles {
		key := slug.Make(title)
		n, ok := set.bySlug[key]
		if !ok || used.Has(key) {
			continue
		}
		used.Add(key)
		children = append(children, n)
	}
	stats.OmittedByTOC += len(set.slugs) - len(children)
	return children, nil
}

func lessByTitle(a, b *Node) bool {
	la, lb := strings.ToLower(a.Title), strings.ToLower(b.Title)
	if la != lb {
		return la < lb
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.URL < b.URL
}

func findFile(files []Entry, name string) (Entry, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return Entry{}, false
}

// staticName returns the published file name of a static asset. Names that
// slug to nothing, such as ".nojekyll", keep a sanitised copy of the original.
func staticName(name, key, ext string) string {
	if key != "" {
		return key + ext
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '-'
	}, strings.ToLower(name))
}

// withoutHidden drops dot-directories such as .git.
func withoutHidden(entries []Entry) ([]Entry, int) {
	kept := entries[:0:0]
	skipped := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			skipped++
			continue
		}
		kept = append(kept, e)
	}
	return kept, skipped
}
