package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/vk/jarsmith/internal/ctxlog"
)

// EntryTime is the timestamp stored on every entry.
var EntryTime = time.Date(1980, time.February, 1, 0, 0, 0, 0, time.UTC)

const entryMode = 0o644

// Duplicate handling.
const (
	KeepFirst = "first"
	KeepLast  = "last"
)

// Options configures an assembly.
type Options struct {
	MainClass  string
	Attributes map[string]string
	// Duplicates is KeepFirst (default) or KeepLast.
	Duplicates string
	// Exclude holds path.Match patterns applied to dependency entries.
	Exclude []string
}

// Input lists what goes into the jar, in precedence order.
type Input struct {
	// Dirs are walked in sorted path order, one after the other.
	Dirs []string
	// Archives are exploded in the given order.
	Archives []string
}

// Summary describes a written archive.
type Summary struct {
	Path       string
	Entries    int
	Duplicates int
	Excluded   int
	Size       int64
}

type entry struct {
	name string
	// exactly one of file and zipped is set
	file   string
	zipped *zip.File
	origin string
}

// Assemble writes the archive to dest. The file appears atomically: it is
// written under a temporary name and renamed, and nothing is left behind
// on failure.
func Assemble(ctx context.Context, dest string, in Input, opts Options) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)
	if opts.Duplicates == "" {
		opts.Duplicates = KeepFirst
	}
	if opts.Duplicates != KeepFirst && opts.Duplicates != KeepLast {
		return nil, fmt.Errorf("unknown duplicates policy %q", opts.Duplicates)
	}

	c := &collector{opts: opts, index: map[string]int{}}
	defer c.close()

	for _, dir := range in.Dirs {
		if err := c.addDir(ctx, dir); err != nil {
			return nil, err
		}
	}
	for _, archive := range in.Archives {
		if err := c.addArchive(ctx, archive); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temporary archive: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := c.write(ctx, tmp); err != nil {
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync archive: %w", err)
	}
	info, err := tmp.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return nil, fmt.Errorf("move archive into place: %w", err)
	}
	committed = true

	s := &Summary{
		Path:       dest,
		Entries:    len(c.entries) + 1,
		Duplicates: c.duplicates,
		Excluded:   c.excluded,
		Size:       info.Size(),
	}
	logger.Debug("Archive written.", "path", dest, "entries", s.Entries, "duplicates", s.Duplicates, "excluded", s.Excluded)
	return s, nil
}

type collector struct {
	opts       Options
	entries    []entry
	index      map[string]int
	readers    []*zip.ReadCloser
	duplicates int
	excluded   int
}

func (c *collector) close() {
	for _, r := range c.readers {
		_ = r.Close()
	}
}

func (c *collector) add(ctx context.Context, e entry) {
	if e.name == ManifestPath {
		ctxlog.FromContext(ctx).Debug("Dropped manifest in favor of the generated one.", "origin", e.origin)
		c.duplicates++
		return
	}
	i, exists := c.index[e.name]
	if !exists {
		c.index[e.name] = len(c.entries)
		c.entries = append(c.entries, e)
		return
	}
	c.duplicates++
	kept, dropped := c.entries[i].origin, e.origin
	if c.opts.Duplicates == KeepLast {
		c.entries[i] = e
		kept, dropped = dropped, kept
	}
	ctxlog.FromContext(ctx).Debug("Dropped duplicate entry.", "entry", e.name, "kept", kept, "dropped", dropped)
}

func (c *collector) addDir(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	names := make(map[string]string, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			return err
		}
		names[f] = filepath.ToSlash(rel)
	}
	sort.Slice(files, func(i, j int) bool { return names[files[i]] < names[files[j]] })

	for _, f := range files {
		c.add(ctx, entry{name: names[f], file: f, origin: dir})
	}
	return nil
}

func (c *collector) addArchive(ctx context.Context, archive string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open dependency archive %s: %w", archive, err)
	}
	c.readers = append(c.readers, r)

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		if c.isExcluded(f.Name) {
			c.excluded++
			continue
		}
		c.add(ctx, entry{name: f.Name, zipped: f, origin: archive})
	}
	return nil
}

func (c *collector) isExcluded(name string) bool {
	for _, pattern := range c.opts.Exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (c *collector) write(ctx context.Context, w io.Writer) error {
	zw := zip.NewWriter(w)

	if err := writeEntry(zw, ManifestPath, func(dst io.Writer) error {
		_, err := dst.Write(Manifest(c.opts.MainClass, c.opts.Attributes))
		return err
	}); err != nil {
		return err
	}

	for _, e := range c.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeEntry(zw, e.name, e.copyTo); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, fill func(io.Writer) error) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: EntryTime}
	hdr.SetMode(entryMode)
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add entry %s: %w", name, err)
	}
	if err := fill(dst); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	return nil
}

func (e entry) copyTo(dst io.Writer) error {
	var (
		src io.ReadCloser
		err error
	)
	if e.zipped != nil {
		src, err = e.zipped.Open()
	} else {
		src, err = os.Open(e.file)
	}
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(dst, src)
	return err
}
