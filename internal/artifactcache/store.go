// Package artifactcache keeps downloaded repository files on local disk and
// indexes them in SQLite, keyed by (repository, coordinate, extension), so
// that repeated builds and offline builds do not hit the network.
package artifactcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vk/jarsmith/internal/artifactcache/migrations"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/ctxlog"
	_ "modernc.org/sqlite"
)

// Entry describes one cached file.
type Entry struct {
	Repository string
	Coordinate coordinate.Coordinate
	Extension  string
	Path       string
	SHA256     string
	Size       int64
	FetchedAt  time.Time
}

// Stats summarizes the cache contents.
type Stats struct {
	Entries int
	Bytes   int64
}

// Store persists cached artifacts under a root directory.
type Store struct {
	root  string
	sqlDB *sql.DB
}

// Open opens (creating if needed) the cache rooted at dir.
func Open(ctx context.Context, dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	root := filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Join(root, "files"), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	dsn := "file:" + filepath.Join(root, "index.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Writers are serialized; SQLite allows a single writer anyway.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{root: root, sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Lookup returns the cached entry, if present and still on disk.
func (s *Store) Lookup(ctx context.Context, repository string, c coordinate.Coordinate, ext string) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	var (
		e         Entry
		fetchedAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT path, sha256, size, fetched_at FROM artifacts
		 WHERE repository = ? AND coordinate = ? AND extension = ?`,
		repository, c.String(), ext,
	)
	if err := row.Scan(&e.Path, &e.SHA256, &e.Size, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("lookup %s (%s): %w", c, ext, err)
	}
	e.Repository = repository
	e.Coordinate = c
	e.Extension = ext
	e.FetchedAt = time.UnixMilli(fetchedAt).UTC()

	info, err := os.Stat(e.Path)
	if err != nil || info.Size() != e.Size {
		ctxlog.FromContext(ctx).Debug("Cached file missing or truncated, treating as miss.", "coordinate", c.String(), "path", e.Path)
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Put stores the content read from r and indexes it. The file is written
// to a temporary name and renamed, so readers never see partial files.
func (s *Store) Put(ctx context.Context, repository string, c coordinate.Coordinate, ext string, r io.Reader) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	dest := filepath.Join(s.root, "files", repository, filepath.FromSlash(c.RepositoryPath(ext)))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Entry{}, fmt.Errorf("create cache path: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return Entry{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return Entry{}, fmt.Errorf("write %s (%s): %w", c, ext, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return Entry{}, fmt.Errorf("move %s into cache: %w", c, err)
	}

	e := Entry{
		Repository: repository,
		Coordinate: c,
		Extension:  ext,
		Path:       dest,
		SHA256:     hex.EncodeToString(hasher.Sum(nil)),
		Size:       size,
		FetchedAt:  time.Now().UTC(),
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO artifacts (repository, coordinate, extension, path, sha256, size, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (repository, coordinate, extension) DO UPDATE SET
		   path = excluded.path,
		   sha256 = excluded.sha256,
		   size = excluded.size,
		   fetched_at = excluded.fetched_at`,
		e.Repository, c.String(), ext, e.Path, e.SHA256, e.Size, e.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("index %s (%s): %w", c, ext, err)
	}
	ctxlog.FromContext(ctx).Debug("Cached artifact.", "coordinate", c.String(), "extension", ext, "size", humanize.Bytes(uint64(size)))
	return e, nil
}

// Stats returns the number of indexed files and their total size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size), 0) FROM artifacts`)
	if err := row.Scan(&st.Entries, &st.Bytes); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return st, nil
}
