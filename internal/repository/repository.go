// Package repository fetches descriptors, archives and version listings
// from Maven-layout repositories, either a local directory or a remote
// HTTP endpoint backed by the artifact cache.
package repository

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/vk/jarsmith/internal/coordinate"
)

// ErrNotFound is returned when a repository does not hold the requested file.
var ErrNotFound = errors.New("not found in repository")

// Repository is one Maven-layout artifact source.
type Repository interface {
	// Name identifies the repository in logs and the cache index.
	Name() string
	// FetchPOM returns the raw descriptor for a concrete coordinate.
	FetchPOM(ctx context.Context, c coordinate.Coordinate) ([]byte, error)
	// FetchArchive returns a local filesystem path to the coordinate's jar.
	FetchArchive(ctx context.Context, c coordinate.Coordinate) (string, error)
	// ListVersions returns the versions published for a module.
	ListVersions(ctx context.Context, m coordinate.Module) ([]string, error)
}

// Chain consults repositories in declaration order; the first one that has
// a file serves it.
type Chain []Repository

// FetchPOM returns the descriptor from the first repository that has it.
func (ch Chain) FetchPOM(ctx context.Context, c coordinate.Coordinate) ([]byte, string, error) {
	for _, repo := range ch {
		data, err := repo.FetchPOM(ctx, c)
		if err == nil {
			return data, repo.Name(), nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", fmt.Errorf("repository %s: %w", repo.Name(), err)
		}
	}
	return nil, "", fmt.Errorf("%s: %w", c, ErrNotFound)
}

// FetchArchive returns the archive from the named repository, falling back
// to the whole chain when the name is unknown or the file is missing there.
func (ch Chain) FetchArchive(ctx context.Context, c coordinate.Coordinate, preferred string) (string, error) {
	ordered := make([]Repository, 0, len(ch))
	for _, repo := range ch {
		if repo.Name() == preferred {
			ordered = append(ordered, repo)
		}
	}
	for _, repo := range ch {
		if repo.Name() != preferred {
			ordered = append(ordered, repo)
		}
	}
	for _, repo := range ordered {
		path, err := repo.FetchArchive(ctx, c)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("repository %s: %w", repo.Name(), err)
		}
	}
	return "", fmt.Errorf("%s (jar): %w", c, ErrNotFound)
}

// ListVersions merges the listings of every repository, without duplicates.
func (ch Chain) ListVersions(ctx context.Context, m coordinate.Module) ([]string, error) {
	var (
		all  []string
		seen = map[string]struct{}{}
	)
	for _, repo := range ch {
		versions, err := repo.ListVersions(ctx, m)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("repository %s: %w", repo.Name(), err)
		}
		for _, v := range versions {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			all = append(all, v)
		}
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%s (versions): %w", m, ErrNotFound)
	}
	return all, nil
}

// metadata is the maven-metadata.xml document of a module.
type metadata struct {
	XMLName    xml.Name `xml:"metadata"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

func parseMetadata(r io.Reader) ([]string, error) {
	var md metadata
	if err := xml.NewDecoder(r).Decode(&md); err != nil {
		return nil, fmt.Errorf("decode maven-metadata.xml: %w", err)
	}
	return md.Versioning.Versions, nil
}

const metadataFile = "maven-metadata.xml"
