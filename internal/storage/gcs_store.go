package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// DefaultBucket is used when the connection string names no bucket.
const DefaultBucket = "docs"

// ErrInvalidConnectionString is returned for malformed remote connection strings.
var ErrInvalidConnectionString = errors.New("invalid connection string")

// GCSSettings are parsed from a connection string of the form
// "Bucket=docs;CredentialsFile=/path/key.json;Project=my-project;Endpoint=https://...".
type GCSSettings struct {
	Bucket          string
	CredentialsFile string
	Project         string
	Endpoint        string
}

// ParseConnectionString parses semicolon separated Key=Value pairs. Keys are
// case-insensitive.
func ParseConnectionString(conn string) (GCSSettings, error) {
	s := GCSSettings{Bucket: DefaultBucket}
	if strings.TrimSpace(conn) == "" {
		return s, fmt.Errorf("%w: empty", ErrInvalidConnectionString)
	}
	for _, part := range strings.Split(conn, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return s, fmt.Errorf("%w: %q is not Key=Value", ErrInvalidConnectionString, part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "bucket":
			s.Bucket = value
		case "credentialsfile":
			s.CredentialsFile = value
		case "project":
			s.Project = value
		case "endpoint":
			s.Endpoint = value
		default:
			return s, fmt.Errorf("%w: unknown key %q", ErrInvalidConnectionString, key)
		}
	}
	if s.Bucket == "" {
		return s, fmt.Errorf("%w: empty bucket", ErrInvalidConnectionString)
	}
	return s, nil
}

// ClientOptions returns the API client options for the settings. An endpoint
// without credentials talks to an unauthenticated emulator.
func (s GCSSettings) ClientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}
	switch {
	case s.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	case s.Endpoint != "":
		opts = append(opts, option.WithoutAuthentication())
	}
	return opts
}

// objectAPI is the subset of the Cloud Storage JSON API the store uses.
type objectAPI interface {
	bucketExists(ctx context.Context, bucket string) (bool, error)
	createBucket(ctx context.Context, project, bucket string) error
	list(ctx context.Context, bucket, prefix, delimiter string) (names, prefixes []string, err error)
	delete(ctx context.Context, bucket, name string) error
	upload(ctx context.Context, bucket, name, contentType string, r io.Reader) error
}

// GCSStore writes to a Google Cloud Storage bucket. Directories are implied by
// object names.
type GCSStore struct {
	api      objectAPI
	settings GCSSettings

	bucketMu    sync.Mutex
	bucketReady bool
}

// NewGCSStore connects to Cloud Storage using a connection string.
func NewGCSStore(ctx context.Context, conn string) (*GCSStore, error) {
	settings, err := ParseConnectionString(conn)
	if err != nil {
		return nil, err
	}
	svc, err := gcs.NewService(ctx, settings.ClientOptions()...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return newGCSStore(&serviceAPI{svc: svc}, settings), nil
}

func newGCSStore(api objectAPI, settings GCSSettings) *GCSStore {
	return &GCSStore{api: api, settings: settings}
}

// Describe implements Store.
func (s *GCSStore) Describe() string { return "gcs:" + s.settings.Bucket }

// ensureBucket checks for the bucket until one check succeeds and creates it
// when a project is configured. Failures are not cached.
func (s *GCSStore) ensureBucket(ctx context.Context) error {
	s.bucketMu.Lock()
	defer s.bucketMu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.api.bucketExists(ctx, s.settings.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.settings.Bucket, err)
	}
	if !exists {
		if s.settings.Project == "" {
			return fmt.Errorf("bucket %s does not exist and no Project is configured to create it", s.settings.Bucket)
		}
		if err := s.api.createBucket(ctx, s.settings.Project, s.settings.Bucket); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.settings.Bucket, err)
		}
	}
	s.bucketReady = true
	return nil
}

// EnsureDir implements Store. Object stores have no directories, so only the
// bucket is checked.
func (s *GCSStore) EnsureDir(ctx context.Context, _ string) error {
	return s.ensureBucket(ctx)
}

// ClearDir implements Store.
func (s *GCSStore) ClearDir(ctx context.Context, dir string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	names, _, err := s.api.list(ctx, s.settings.Bucket, dirPrefix(Key(dir)), "")
	if err != nil {
		return fmt.Errorf("clear directory %s: %w", dir, err)
	}
	for _, name := range names {
		if err := s.api.delete(ctx, s.settings.Bucket, name); err != nil {
			return fmt.Errorf("clear directory %s: delete %s: %w", dir, name, err)
		}
	}
	return nil
}

// ListDirNames implements Store.
func (s *GCSStore) ListDirNames(ctx context.Context, dir string) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	prefix := dirPrefix(Key(dir))
	_, prefixes, err := s.api.list(ctx, s.settings.Bucket, prefix, "/")
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		name := strings.TrimSuffix(strings.TrimPrefix(p, prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// CopyFile implements Store.
func (s *GCSStore) CopyFile(ctx context.Context, src, dest string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	// #nosec G304 -- src comes from the configured source tree
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()
	if err := s.api.upload(ctx, s.settings.Bucket, Key(dest), contentType(dest), f); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dest, err)
	}
	return nil
}

// WriteText implements Store.
func (s *GCSStore) WriteText(ctx context.Context, content, dest string) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	if err := s.api.upload(ctx, s.settings.Bucket, Key(dest), contentType(dest), strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

func contentType(name string) string {
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// serviceAPI adapts the generated Cloud Storage client to objectAPI.
type serviceAPI struct {
	svc *gcs.Service
}

func (a *serviceAPI) bucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := a.svc.Buckets.Get(bucket).Context(ctx).Do()
	if err == nil {
		return true, nil
	}
	if hasStatus(err, http.StatusNotFound) {
		return false, nil
	}
	return false, err
}

func (a *serviceAPI) createBucket(ctx context.Context, project, bucket string) error {
	_, err := a.svc.Buckets.Insert(project, &gcs.Bucket{Name: bucket}).Context(ctx).Do()
	if hasStatus(err, http.StatusConflict) {
		return nil
	}
	return err
}

func (a *serviceAPI) list(ctx context.Context, bucket, prefix, delimiter string) (names, prefixes []string, err error) {
	call := a.svc.Objects.List(bucket).Prefix(prefix).Fields("items(name),prefixes,nextPageToken")
	if delimiter != "" {
		call = call.Delimiter(delimiter)
	}
	err = call.Pages(ctx, func(page *gcs.Objects) error {
		for _, o := range page.Items {
			names = append(names, o.Name)
		}
		prefixes = append(prefixes, page.Prefixes...)
		return nil
	})
	return names, prefixes, err
}

func (a *serviceAPI) delete(ctx context.Context, bucket, name string) error {
	err := a.svc.Objects.Delete(bucket, name).Context(ctx).Do()
	if hasStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

func (a *serviceAPI) upload(ctx context.Context, bucket, name, ct string, r io.Reader) error {
	obj := &gcs.Object{Name: name, ContentType: ct}
	_, err := a.svc.Objects.Insert(bucket, obj).Media(r, googleapi.ContentType(ct)).Context(ctx).Do()
	return err
}

func hasStatus(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}
