// Package mavenrepo writes throwaway Maven-layout repositories for tests:
// descriptors, jars with chosen entries and version listings.
package mavenrepo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/vk/jarsmith/internal/coordinate"
)

// Dep is a dependency written into a generated descriptor.
type Dep struct {
	Coordinate string
	Scope      string
	Type       string
	Optional   bool
	// Exclusions are "group:artifact" strings; "*" wildcards are allowed.
	Exclusions []string
}

// Artifact describes one published module version.
type Artifact struct {
	Coordinate   string
	Packaging    string
	Parent       string
	Properties   map[string]string
	Dependencies []Dep
	Managed      []Dep
	// Entries are the jar contents, path to content. Ignored for pom packaging.
	Entries map[string]string
}

// Repo is a repository directory under a test's temp dir.
type Repo struct {
	t        testing.TB
	Root     string
	versions map[coordinate.Module][]string
}

// New creates an empty repository.
func New(t testing.TB) *Repo {
	t.Helper()
	return &Repo{t: t, Root: t.TempDir(), versions: map[coordinate.Module][]string{}}
}

// Add publishes an artifact and returns the repository for chaining.
func (r *Repo) Add(a Artifact) *Repo {
	r.t.Helper()
	c := coordinate.MustParse(a.Coordinate)

	r.write(c.RepositoryPath("pom"), []byte(renderPOM(c, a)))
	if a.Packaging == "" || a.Packaging == "jar" {
		r.write(c.RepositoryPath("jar"), renderJar(r.t, a.Entries))
	}

	r.versions[c.Module()] = append(r.versions[c.Module()], c.Version)
	r.write(c.Module().RepositoryDir()+"/maven-metadata.xml", []byte(renderMetadata(c.Module(), r.versions[c.Module()])))
	return r
}

// Jar publishes a jar-packaged artifact with the given entries and
// dependencies.
func (r *Repo) Jar(coord string, entries map[string]string, deps ...string) *Repo {
	r.t.Helper()
	a := Artifact{Coordinate: coord, Entries: entries}
	for _, d := range deps {
		a.Dependencies = append(a.Dependencies, Dep{Coordinate: d})
	}
	return r.Add(a)
}

// ArchivePath returns the on-disk path of a published jar.
func (r *Repo) ArchivePath(coord string) string {
	return filepath.Join(r.Root, filepath.FromSlash(coordinate.MustParse(coord).RepositoryPath("jar")))
}

func (r *Repo) write(rel string, data []byte) {
	r.t.Helper()
	path := filepath.Join(r.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("mavenrepo: mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.t.Fatalf("mavenrepo: write %s: %v", rel, err)
	}
}

func renderDeps(b *strings.Builder, deps []Dep) {
	b.WriteString("<dependencies>\n")
	for _, d := range deps {
		c := coordinate.MustParse(d.Coordinate)
		fmt.Fprintf(b, "<dependency><groupId>%s</groupId><artifactId>%s</artifactId>", c.Group, c.Artifact)
		if c.Version != "" {
			fmt.Fprintf(b, "<version>%s</version>", c.Version)
		}
		if d.Type != "" {
			fmt.Fprintf(b, "<type>%s</type>", d.Type)
		}
		if d.Scope != "" {
			fmt.Fprintf(b, "<scope>%s</scope>", d.Scope)
		}
		if d.Optional {
			b.WriteString("<optional>true</optional>")
		}
		if len(d.Exclusions) > 0 {
			b.WriteString("<exclusions>")
			for _, e := range d.Exclusions {
				parts := strings.SplitN(e, ":", 2)
				fmt.Fprintf(b, "<exclusion><groupId>%s</groupId><artifactId>%s</artifactId></exclusion>", parts[0], parts[1])
			}
			b.WriteString("</exclusions>")
		}
		b.WriteString("</dependency>\n")
	}
	b.WriteString("</dependencies>\n")
}

func renderPOM(c coordinate.Coordinate, a Artifact) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<project xmlns="http://maven.apache.org/POM/4.0.0">` + "\n")
	if a.Parent != "" {
		p := coordinate.MustParse(a.Parent)
		fmt.Fprintf(&b, "<parent><groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version></parent>\n", p.Group, p.Artifact, p.Version)
	}
	fmt.Fprintf(&b, "<groupId>%s</groupId><artifactId>%s</artifactId><version>%s</version>\n", c.Group, c.Artifact, c.Version)
	if a.Packaging != "" {
		fmt.Fprintf(&b, "<packaging>%s</packaging>\n", a.Packaging)
	}
	if len(a.Properties) > 0 {
		keys := make([]string, 0, len(a.Properties))
		for k := range a.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("<properties>")
		for _, k := range keys {
			fmt.Fprintf(&b, "<%s>%s</%s>", k, a.Properties[k], k)
		}
		b.WriteString("</properties>\n")
	}
	if len(a.Managed) > 0 {
		b.WriteString("<dependencyManagement>")
		renderDeps(&b, a.Managed)
		b.WriteString("</dependencyManagement>\n")
	}
	if len(a.Dependencies) > 0 {
		renderDeps(&b, a.Dependencies)
	}
	b.WriteString("</project>\n")
	return b.String()
}

func renderMetadata(m coordinate.Module, versions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<metadata><groupId>%s</groupId><artifactId>%s</artifactId><versioning><versions>", m.Group, m.Artifact)
	for _, v := range versions {
		fmt.Fprintf(&b, "<version>%s</version>", v)
	}
	b.WriteString("</versions></versioning></metadata>\n")
	return b.String()
}

// JarBytes builds a zip archive holding entries in sorted order.
func JarBytes(t testing.TB, entries map[string]string) []byte {
	t.Helper()
	return renderJar(t, entries)
}

func renderJar(t testing.TB, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("mavenrepo: create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(entries[name])); err != nil {
			t.Fatalf("mavenrepo: write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("mavenrepo: close jar: %v", err)
	}
	return buf.Bytes()
}
