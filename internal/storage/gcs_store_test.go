package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	buckets     map[string]bool
	objects     map[string]string
	types       map[string]string
	existsCalls int
	existsErrs  []error
	created     []string
	uploadErr   error
}

func newFakeObjects(buckets ...string) *fakeObjects {
	f := &fakeObjects{buckets: map[string]bool{}, objects: map[string]string{}, types: map[string]string{}}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	return f
}

func (f *fakeObjects) bucketExists(_ context.Context, bucket string) (bool, error) {
	f.existsCalls++
	if len(f.existsErrs) > 0 {
		err := f.existsErrs[0]
		f.existsErrs = f.existsErrs[1:]
		return false, err
	}
	return f.buckets[bucket], nil
}

func (f *fakeObjects) createBucket(_ context.Context, project, bucket string) error {
	f.created = append(f.created, project+"/"+bucket)
	f.buckets[bucket] = true
	return nil
}

func (f *fakeObjects) list(_ context.Context, bucket, prefix, delimiter string) ([]string, []string, error) {
	var names []string
	seen := map[string]bool{}
	for key := range f.objects {
		name := strings.TrimPrefix(key, bucket+"/")
		if !strings.HasPrefix(key, bucket+"/") || !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				seen[prefix+rest[:i+1]] = true
				continue
			}
		}
		names = append(names, name)
	}
	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(names)
	return names, prefixes, nil
}

func (f *fakeObjects) delete(_ context.Context, bucket, name string) error {
	delete(f.objects, bucket+"/"+name)
	return nil
}

func (f *fakeObjects) upload(_ context.Context, bucket, name, ct string, r io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+name] = string(data)
	f.types[bucket+"/"+name] = ct
	return nil
}

func TestParseConnectionString(t *testing.T) {
	s, err := ParseConnectionString("Bucket=site-docs; credentialsFile=/keys/sa.json ;Project=acme;Endpoint=http://localhost:4443/storage/v1/")
	require.NoError(t, err)
	require.Equal(t, GCSSettings{
		Bucket:          "site-docs",
		CredentialsFile: "/keys/sa.json",
		Project:         "acme",
		Endpoint:        "http://localhost:4443/storage/v1/",
	}, s)

	s, err = ParseConnectionString("Project=acme")
	require.NoError(t, err)
	require.Equal(t, DefaultBucket, s.Bucket)

	for _, bad := range []string{"", "Bucket", "Color=blue", "Bucket="} {
		_, err := ParseConnectionString(bad)
		require.ErrorIs(t, err, ErrInvalidConnectionString, bad)
	}
}

func TestGCSSettingsClientOptions(t *testing.T) {
	require.Empty(t, GCSSettings{Bucket: "docs"}.ClientOptions())
	require.Len(t, GCSSettings{Bucket: "docs", Endpoint: "http://emulator"}.ClientOptions(), 2)
	require.Len(t, GCSSettings{Bucket: "docs", CredentialsFile: "/k.json"}.ClientOptions(), 1)
}

func TestGCSStoreWritesObjects(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects("docs")
	store := newGCSStore(api, GCSSettings{Bucket: "docs"})

	src := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0o600))

	require.NoError(t, store.EnsureDir(ctx, "/1.0.0"))
	require.NoError(t, store.CopyFile(ctx, src, "static/1.0.0/logo.png"))
	require.NoError(t, store.WriteText(ctx, "{}", "/1.0.0/toc.json"))

	require.Equal(t, "png", api.objects["docs/static/1.0.0/logo.png"])
	require.Equal(t, "{}", api.objects["docs/1.0.0/toc.json"])
	require.Equal(t, "image/png", api.types["docs/static/1.0.0/logo.png"])
	require.Equal(t, "application/json; charset=utf-8", api.types["docs/1.0.0/toc.json"])
	require.Equal(t, 1, api.existsCalls, "bucket is checked once")
	require.Equal(t, "gcs:docs", store.Describe())
}

func TestGCSStoreRetriesFailedBucketCheck(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects("docs")
	api.existsErrs = []error{errors.New("transient 503")}
	store := newGCSStore(api, GCSSettings{Bucket: "docs"})

	err := store.EnsureDir(ctx, "/1.0.0")
	require.Error(t, err)
	require.Contains(t, err.Error(), "transient 503")

	require.NoError(t, store.EnsureDir(ctx, "/1.0.0"))
	require.NoError(t, store.WriteText(ctx, "[]", "/versions.json"))
	require.Equal(t, 2, api.existsCalls, "success is cached, failure is not")
}

func TestGCSStoreListAndClear(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects("docs")
	api.objects = map[string]string{
		"docs/versions.json":         "[]",
		"docs/1.0.0/toc.json":        "{}",
		"docs/1.0.0/guide/a.md":      "a",
		"docs/2.0.0/toc.json":        "{}",
		"docs/static/1.0.0/logo.png": "png",
		"other/3.0.0/toc.json":       "{}",
	}
	store := newGCSStore(api, GCSSettings{Bucket: "docs"})

	names, err := store.ListDirNames(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.0", "2.0.0", "static"}, names)

	names, err = store.ListDirNames(ctx, "static")
	require.NoError(t, err)
	require.Equal(t, []string{"1.0.0"}, names)

	require.NoError(t, store.ClearDir(ctx, "1.0.0"))
	require.NotContains(t, api.objects, "docs/1.0.0/toc.json")
	require.NotContains(t, api.objects, "docs/1.0.0/guide/a.md")
	require.Contains(t, api.objects, "docs/2.0.0/toc.json")
}

func TestGCSStoreCreatesMissingBucket(t *testing.T) {
	api := newFakeObjects()
	store := newGCSStore(api, GCSSettings{Bucket: "docs", Project: "acme"})

	require.NoError(t, store.WriteText(context.Background(), "[]", "versions.json"))
	require.Equal(t, []string{"acme/docs"}, api.created)
}

func TestGCSStoreMissingBucketWithoutProject(t *testing.T) {
	api := newFakeObjects()
	store := newGCSStore(api, GCSSettings{Bucket: "docs"})

	err := store.WriteText(context.Background(), "[]", "versions.json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

func TestGCSStoreUploadError(t *testing.T) {
	api := newFakeObjects("docs")
	api.uploadErr = errors.New("quota")
	store := newGCSStore(api, GCSSettings{Bucket: "docs"})

	err := store.WriteText(context.Background(), "[]", "versions.json")
	require.ErrorIs(t, err, api.uploadErr)
}

func TestContentType(t *testing.T) {
	require.Equal(t, "text/markdown; charset=utf-8", contentType("a/b.md"))
	require.Equal(t, "application/octet-stream", contentType("a/b.unknownext"))
}
