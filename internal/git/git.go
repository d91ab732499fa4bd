package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// ErrNoRepository is returned by Checkout when no repository URL is given.
var ErrNoRepository = errors.New("no repository configured")

type cloneFunc func(ctx context.Context, dir string, opts *git.CloneOptions) (*git.Repository, error)

func plainClone(ctx context.Context, dir string, opts *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, dir, false, opts)
}

// Client clones repositories.
type Client struct {
	depth  int
	logger *slog.Logger
	clone  cloneFunc
}

// Checkout describes a completed clone.
type Checkout struct {
	Path   string
	Ref    plumbing.ReferenceName
	Commit string
}

// NewClient creates a client. A depth of zero clones full history.
func NewClient(depth int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{depth: depth, logger: logger, clone: plainClone}
}

// DefaultRef is the ref used when none is configured: the release tag of version.
func DefaultRef(version string) string {
	return "v" + strings.TrimPrefix(version, "v")
}

// refCandidates lists the references tried for ref, in order.
func refCandidates(ref string) []plumbing.ReferenceName {
	if strings.HasPrefix(ref, "refs/") {
		return []plumbing.ReferenceName{plumbing.ReferenceName(ref)}
	}
	return []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(ref),
		plumbing.NewBranchReferenceName(ref),
	}
}

func isMissingRef(err error) bool {
	return errors.Is(err, git.NoMatchingRefSpecError{}) || errors.Is(err, plumbing.ErrReferenceNotFound)
}

// Checkout clones url at ref into dir. dir must not exist or be empty.
func (c *Client) Checkout(ctx context.Context, url, ref, dir string) (*Checkout, error) {
	if url == "" {
		return nil, ErrNoRepository
	}
	var lastErr error
	for _, name := range refCandidates(ref) {
		c.logger.DebugContext(ctx, "Cloning repository", logfields.Repository(url), logfields.Ref(name.String()), logfields.Path(dir))

		repo, err := c.clone(ctx, dir, &git.CloneOptions{
			URL:           url,
			ReferenceName: name,
			SingleBranch:  true,
			Depth:         c.depth,
			Tags:          git.NoTags,
		})
		if err != nil {
			lastErr = err
			if isMissingRef(err) {
				if rmErr := os.RemoveAll(dir); rmErr != nil {
					return nil, fmt.Errorf("failed to reset clone directory: %w", rmErr)
				}
				continue
			}
			return nil, ClassifyGitError(err, "clone", url)
		}

		co := &Checkout{Path: dir, Ref: name}
		if head, herr := repo.Head(); herr == nil {
			co.Commit = head.Hash().String()
		}
		c.logger.InfoContext(ctx, "Repository cloned",
			logfields.Repository(url),
			logfields.Ref(name.String()),
			slog.String("commit", shortHash(co.Commit)),
			logfields.Path(dir))
		return co, nil
	}
	return nil, ClassifyGitError(fmt.Errorf("ref %q not found: %w", ref, lastErr), "clone", url)
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
