package repository

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/vk/jarsmith/internal/artifactcache"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/ctxlog"
)

// Remote serves files from an HTTP(S) Maven repository through the local
// artifact cache.
type Remote struct {
	name      string
	baseURL   string
	client    *http.Client
	cache     *artifactcache.Store
	offline   bool
	checksums bool

	mu       sync.Mutex
	versions map[coordinate.Module][]string
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// WithOffline serves only what the cache already holds.
func WithOffline(offline bool) RemoteOption {
	return func(r *Remote) { r.offline = offline }
}

// WithChecksums toggles verification against the published .sha1 files.
func WithChecksums(enabled bool) RemoteOption {
	return func(r *Remote) { r.checksums = enabled }
}

// NewRemote creates a remote repository at baseURL, caching into cache.
func NewRemote(name, baseURL string, cache *artifactcache.Store, opts ...RemoteOption) *Remote {
	r := &Remote{
		name:      name,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		client:    &http.Client{Timeout: 60 * time.Second},
		cache:     cache,
		checksums: true,
		versions:  make(map[coordinate.Module][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Repository.
func (r *Remote) Name() string { return r.name }

// FetchPOM implements Repository.
func (r *Remote) FetchPOM(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	entry, err := r.fetch(ctx, c, "pom")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("read cached pom %s: %w", c, err)
	}
	return data, nil
}

// FetchArchive implements Repository.
func (r *Remote) FetchArchive(ctx context.Context, c coordinate.Coordinate) (string, error) {
	entry, err := r.fetch(ctx, c, "jar")
	if err != nil {
		return "", err
	}
	return entry.Path, nil
}

// ListVersions implements Repository. Listings are remembered for the
// lifetime of the repository value.
func (r *Remote) ListVersions(ctx context.Context, m coordinate.Module) ([]string, error) {
	r.mu.Lock()
	cached, ok := r.versions[m]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}
	if r.offline {
		return nil, fmt.Errorf("offline, no version listing for %s: %w", m, ErrNotFound)
	}

	body, err := r.get(ctx, r.baseURL+"/"+m.RepositoryDir()+"/"+metadataFile)
	if err != nil {
		return nil, err
	}
	versions, err := parseMetadata(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.versions[m] = versions
	r.mu.Unlock()
	return versions, nil
}

func (r *Remote) fetch(ctx context.Context, c coordinate.Coordinate, ext string) (artifactcache.Entry, error) {
	logger := ctxlog.FromContext(ctx).With("repository", r.name, "coordinate", c.String(), "extension", ext)

	entry, ok, err := r.cache.Lookup(ctx, r.name, c, ext)
	if err != nil {
		return artifactcache.Entry{}, err
	}
	if ok {
		logger.Debug("Artifact served from cache.")
		return entry, nil
	}
	if r.offline {
		return artifactcache.Entry{}, fmt.Errorf("offline and not cached: %w", ErrNotFound)
	}

	url := r.baseURL + "/" + c.RepositoryPath(ext)
	logger.Debug("Downloading artifact.", "url", url)
	body, err := r.get(ctx, url)
	if err != nil {
		return artifactcache.Entry{}, err
	}
	if r.checksums {
		if err := r.verify(ctx, url, body); err != nil {
			return artifactcache.Entry{}, fmt.Errorf("%s: %w", c, err)
		}
	}
	return r.cache.Put(ctx, r.name, c, ext, bytes.NewReader(body))
}

// verify compares body against the published SHA-1. A missing checksum file
// is tolerated; a mismatching one is not.
func (r *Remote) verify(ctx context.Context, url string, body []byte) error {
	published, err := r.get(ctx, url+".sha1")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ctxlog.FromContext(ctx).Debug("No published checksum.", "url", url)
			return nil
		}
		return err
	}
	fields := strings.Fields(string(published))
	if len(fields) == 0 {
		return nil
	}
	sum := sha1.Sum(body)
	if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, fields[0]) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", url, fields[0], got)
	}
	return nil
}

func (r *Remote) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}
