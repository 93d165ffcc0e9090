// This file translates the decoded schema structs into the format-agnostic
// configuration model, validating values along the way.

package hcl

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/coordinate"
	"github.com/vk/jarsmith/internal/schema"
)

func translate(dir, name string, p *schema.Project, b *schema.BuildFile) (*config.Model, error) {
	m := &config.Model{
		Dir: dir,
		Project: config.Project{
			Name:                name,
			Group:               p.Group,
			Version:             p.Version,
			SourceCompatibility: p.SourceCompatibility,
		},
	}

	repos, err := translateRepositories(dir, b.Repositories)
	if err != nil {
		return nil, err
	}
	m.Repositories = repos

	mgmt, err := translateManagement(b.Management)
	if err != nil {
		return nil, err
	}
	m.Management = mgmt

	decls, err := translateDeclarations(b.Dependencies, b.Dependency)
	if err != nil {
		return nil, err
	}
	m.Declarations = decls

	m.Compile = translateCompile(b.Compile)

	test, err := translateTest(b.Test)
	if err != nil {
		return nil, err
	}
	m.Test = test

	jar, err := translateJar(b.Jar)
	if err != nil {
		return nil, err
	}
	m.Jar = jar
	return m, nil
}

func translateRepositories(dir string, in []*schema.Repository) ([]config.Repository, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]config.Repository, 0, len(in))
	for _, r := range in {
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("repository %q is declared more than once", r.Name)
		}
		seen[r.Name] = struct{}{}

		switch {
		case r.URL != "" && r.Path != "":
			return nil, fmt.Errorf("repository %q: url and path are mutually exclusive", r.Name)
		case r.URL == "" && r.Path == "":
			return nil, fmt.Errorf("repository %q: one of url or path is required", r.Name)
		}
		repo := config.Repository{Name: r.Name, URL: r.URL}
		if r.Path != "" {
			repo.Path = r.Path
			if !filepath.IsAbs(repo.Path) {
				repo.Path = filepath.Join(dir, repo.Path)
			}
		}
		out = append(out, repo)
	}
	return out, nil
}

func translateManagement(in *schema.DependencyManagement) (config.Management, error) {
	mgmt := config.Management{Enforce: true, Managed: map[coordinate.Module]string{}}
	if in == nil {
		return mgmt, nil
	}
	if in.Enforce != nil {
		mgmt.Enforce = *in.Enforce
	}
	for _, s := range in.Imports {
		c, err := coordinate.Parse(s)
		if err != nil {
			return mgmt, fmt.Errorf("dependency_management imports: %w", err)
		}
		if !c.HasVersion() {
			return mgmt, fmt.Errorf("dependency_management imports: %s needs a version", c)
		}
		mgmt.Imports = append(mgmt.Imports, c)
	}
	for key, version := range in.Managed {
		mod, err := coordinate.ParseModule(key)
		if err != nil {
			return mgmt, fmt.Errorf("dependency_management managed: %w", err)
		}
		if version == "" {
			return mgmt, fmt.Errorf("dependency_management managed: %s has an empty version", mod)
		}
		mgmt.Managed[mod] = version
	}
	return mgmt, nil
}

func translateDeclarations(lists []*schema.Dependencies, blocks []*schema.Dependency) ([]config.Declaration, error) {
	var out []config.Declaration
	add := func(scope config.Scope, coords []string) error {
		for _, s := range coords {
			c, err := coordinate.Parse(s)
			if err != nil {
				return fmt.Errorf("%s: %w", scope, err)
			}
			out = append(out, config.Declaration{Scope: scope, Coordinate: c})
		}
		return nil
	}

	for _, d := range lists {
		byScope := []struct {
			scope  config.Scope
			coords []string
		}{
			{config.ScopeImplementation, d.Implementation},
			{config.ScopeRuntimeOnly, d.RuntimeOnly},
			{config.ScopeCompileOnly, d.CompileOnly},
			{config.ScopeAnnotationProcessor, d.AnnotationProcessor},
			{config.ScopeTestImplementation, d.TestImplementation},
			{config.ScopeTestRuntimeOnly, d.TestRuntimeOnly},
			{config.ScopeTestCompileOnly, d.TestCompileOnly},
			{config.ScopeTestAnnotationProcessor, d.TestAnnotationProcessor},
			{config.ScopeDevelopmentOnly, d.DevelopmentOnly},
		}
		for _, s := range byScope {
			if err := add(s.scope, s.coords); err != nil {
				return nil, err
			}
		}
	}

	for _, b := range blocks {
		scope, err := config.ParseScope(b.Scope)
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", b.Coordinate, err)
		}
		c, err := coordinate.Parse(b.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("dependency block: %w", err)
		}
		decl := config.Declaration{Scope: scope, Coordinate: c}
		for _, e := range b.Exclude {
			ex, err := config.ParseExclusion(e)
			if err != nil {
				return nil, fmt.Errorf("dependency %q: %w", b.Coordinate, err)
			}
			decl.Exclusions = append(decl.Exclusions, ex)
		}
		out = append(out, decl)
	}
	return out, nil
}

func translateCompile(in *schema.Compile) config.Compile {
	out := config.Compile{Encoding: config.DefaultEncoding}
	if in == nil {
		return out
	}
	if in.Encoding != "" {
		out.Encoding = in.Encoding
	}
	out.Args = in.Args
	out.Executable = in.Executable
	return out
}

func translateTest(in *schema.Test) (config.Test, error) {
	out := config.Test{
		Platform:      config.DefaultPlatform,
		FailOnFailure: true,
		Launcher:      coordinate.MustParse(config.DefaultLauncher),
	}
	if in == nil {
		return out, nil
	}
	if in.Platform != "" {
		out.Platform = in.Platform
	}
	if out.Platform != config.DefaultPlatform {
		return out, fmt.Errorf("test: unsupported platform %q (supported: %s)", out.Platform, config.DefaultPlatform)
	}
	if in.FailOnFailure != nil {
		out.FailOnFailure = *in.FailOnFailure
	}
	if in.Launcher != "" {
		c, err := coordinate.Parse(in.Launcher)
		if err != nil {
			return out, fmt.Errorf("test launcher: %w", err)
		}
		out.Launcher = c
	}
	out.Executable = in.Executable
	return out, nil
}

func translateJar(in *schema.Jar) (config.Jar, error) {
	out := config.Jar{Duplicates: config.DuplicatesFirst, Attributes: map[string]string{}}
	if in == nil {
		return out, nil
	}
	out.MainClass = in.MainClass
	switch in.Duplicates {
	case "":
	case config.DuplicatesFirst, config.DuplicatesLast:
		out.Duplicates = in.Duplicates
	default:
		return out, fmt.Errorf("jar: duplicates must be %q or %q, got %q", config.DuplicatesFirst, config.DuplicatesLast, in.Duplicates)
	}
	for _, pattern := range in.Exclude {
		if _, err := path.Match(pattern, ""); err != nil {
			return out, fmt.Errorf("jar: invalid exclude pattern %q: %w", pattern, err)
		}
	}
	out.Exclude = in.Exclude

	keys := make([]string, 0, len(in.Attributes))
	for k := range in.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "Manifest-Version", "Main-Class", "Created-By":
			return out, fmt.Errorf("jar: attribute %q is generated and cannot be set", k)
		}
		out.Attributes[k] = in.Attributes[k]
	}
	return out, nil
}
