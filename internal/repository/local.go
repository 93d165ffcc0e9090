package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/jarsmith/internal/coordinate"
)

// Local serves files from a directory in the Maven repository layout.
type Local struct {
	name string
	root string
}

// NewLocal creates a repository rooted at dir.
func NewLocal(name, dir string) *Local {
	return &Local{name: name, root: dir}
}

// Name implements Repository.
func (l *Local) Name() string { return l.name }

func (l *Local) file(rel string) string {
	return filepath.Join(l.root, filepath.FromSlash(rel))
}

// FetchPOM implements Repository.
func (l *Local) FetchPOM(ctx context.Context, c coordinate.Coordinate) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.file(c.RepositoryPath("pom")))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read pom %s: %w", c, err)
	}
	return data, nil
}

// FetchArchive implements Repository.
func (l *Local) FetchArchive(ctx context.Context, c coordinate.Coordinate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := l.file(c.RepositoryPath("jar"))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat jar %s: %w", c, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// ListVersions reads maven-metadata.xml when present and otherwise lists
// the version directories of the module.
func (l *Local) ListVersions(ctx context.Context, m coordinate.Module) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := l.file(m.RepositoryDir())
	if data, err := os.ReadFile(filepath.Join(dir, metadataFile)); err == nil {
		return parseMetadata(bytes.NewReader(data))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("list versions of %s: %w", m, err)
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}
