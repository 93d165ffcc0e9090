package repository_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/artifactcache"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/repository"
)

type fakeServer struct {
	files map[string]string
	hits  atomic.Int64
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	body, ok := f.files[strings.TrimPrefix(r.URL.Path, "/")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newRemote(t *testing.T, files map[string]string, opts ...repository.RemoteOption) (*repository.Remote, *fakeServer) {
	t.Helper()
	fake := &fakeServer{files: files}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cache, err := artifactcache.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	return repository.NewRemote("central", srv.URL+"/", cache, opts...), fake
}

const libPOM = `<project><groupId>org.example</groupId><artifactId>lib</artifactId><version>1.0</version></project>`

func TestRemote_FetchPOMVerifiesAndCaches(t *testing.T) {
	path := "org/example/lib/1.0/lib-1.0.pom"
	remote, fake := newRemote(t, map[string]string{
		path:          libPOM,
		path + ".sha1": sha1Hex(libPOM) + "  lib-1.0.pom\n",
	})
	ctx := context.Background()
	c := coordinate.MustParse("org.example:lib:1.0")

	data, err := remote.FetchPOM(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, libPOM, string(data))
	assert.Equal(t, int64(2), fake.hits.Load())

	data, err = remote.FetchPOM(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, libPOM, string(data))
	assert.Equal(t, int64(2), fake.hits.Load(), "second fetch should be served from cache")
}

func TestRemote_ChecksumMismatch(t *testing.T) {
	path := "org/example/lib/1.0/lib-1.0.pom"
	remote, _ := newRemote(t, map[string]string{
		path:          libPOM,
		path + ".sha1": sha1Hex("something else"),
	})

	_, err := remote.FetchPOM(context.Background(), coordinate.MustParse("org.example:lib:1.0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.False(t, errors.Is(err, repository.ErrNotFound))
}

func TestRemote_MissingChecksumTolerated(t *testing.T) {
	remote, _ := newRemote(t, map[string]string{
		"org/example/lib/1.0/lib-1.0.jar": "jar-bytes",
	})

	path, err := remote.FetchArchive(context.Background(), coordinate.MustParse("org.example:lib:1.0"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jar-bytes", string(data))
}

func TestRemote_NotFound(t *testing.T) {
	remote, _ := newRemote(t, map[string]string{})

	_, err := remote.FetchPOM(context.Background(), coordinate.MustParse("org.example:nope:1.0"))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestRemote_OfflineNeverDownloads(t *testing.T) {
	remote, fake := newRemote(t, map[string]string{
		"org/example/lib/1.0/lib-1.0.pom": libPOM,
	}, repository.WithOffline(true))

	_, err := remote.FetchPOM(context.Background(), coordinate.MustParse("org.example:lib:1.0"))
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	_, err = remote.ListVersions(context.Background(), coordinate.Module{Group: "org.example", Artifact: "lib"})
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Zero(t, fake.hits.Load())
}

func TestRemote_ListVersionsMemoized(t *testing.T) {
	remote, fake := newRemote(t, map[string]string{
		"org/example/lib/maven-metadata.xml": `<metadata><versioning><versions><version>1.0</version><version>1.1</version></versions></versioning></metadata>`,
	})
	m := coordinate.Module{Group: "org.example", Artifact: "lib"}

	for i := 0; i < 3; i++ {
		versions, err := remote.ListVersions(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, []string{"1.0", "1.1"}, versions)
	}
	assert.Equal(t, int64(1), fake.hits.Load())
}

func TestRemote_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	cache, err := artifactcache.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	remote := repository.NewRemote("central", srv.URL, cache)
	_, err = remote.FetchPOM(context.Background(), coordinate.MustParse("org.example:lib:1.0"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "500")
}
