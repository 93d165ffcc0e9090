package pom

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vk/jarsmith/internal/coordinate"
)

// maxInheritanceDepth bounds parent chains and BOM imports.
const maxInheritanceDepth = 32

// Loader fetches the descriptor for a concrete coordinate.
type Loader interface {
	LoadPOM(ctx context.Context, c coordinate.Coordinate) (*Project, error)
}

// Effective is a descriptor after inheritance, interpolation and
// dependency management have been applied.
type Effective struct {
	Coordinate   coordinate.Coordinate
	Packaging    string
	Dependencies []Dependency
	// Managed maps modules to their managed dependency entry, in the order
	// the entries were declared.
	Managed     map[coordinate.Module]Dependency
	ManagedKeys []coordinate.Module
}

// HasArchive reports whether the module ships a jar. POM-packaged modules
// only carry metadata.
func (e *Effective) HasArchive() bool {
	return e.Packaging == "" || e.Packaging == "jar" || e.Packaging == "bundle" || e.Packaging == "maven-plugin"
}

// ManagedVersion returns the managed version for a module, if any.
func (e *Effective) ManagedVersion(m coordinate.Module) (string, bool) {
	d, ok := e.Managed[m]
	if !ok || d.Version == "" {
		return "", false
	}
	return d.Version, true
}

// Build computes the effective descriptor of p, loading parents and
// imported BOMs through loader.
func Build(ctx context.Context, p *Project, loader Loader) (*Effective, error) {
	return build(ctx, p, loader, 0)
}

func build(ctx context.Context, p *Project, loader Loader, depth int) (*Effective, error) {
	if depth > maxInheritanceDepth {
		return nil, fmt.Errorf("pom inheritance deeper than %d levels at %s:%s", maxInheritanceDepth, p.GroupID, p.ArtifactID)
	}

	// Collect the chain child-first.
	chain := []*Project{p}
	for cur := p; cur.Parent != nil; {
		if len(chain) > maxInheritanceDepth {
			return nil, fmt.Errorf("pom parent chain deeper than %d levels at %s:%s", maxInheritanceDepth, p.GroupID, p.ArtifactID)
		}
		parent, err := loader.LoadPOM(ctx, cur.Parent.Coordinate())
		if err != nil {
			return nil, fmt.Errorf("load parent %s: %w", cur.Parent.Coordinate(), err)
		}
		chain = append(chain, parent)
		cur = parent
	}

	groupID, version := p.GroupID, p.Version
	if p.Parent != nil {
		if groupID == "" {
			groupID = p.Parent.GroupID
		}
		if version == "" {
			version = p.Parent.Version
		}
	}

	props := map[string]string{}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Properties {
			props[k] = v
		}
	}
	props["project.groupId"] = groupID
	props["pom.groupId"] = groupID
	props["groupId"] = groupID
	props["project.artifactId"] = p.ArtifactID
	props["project.version"] = version
	props["pom.version"] = version
	props["version"] = version
	if p.Parent != nil {
		props["project.parent.groupId"] = p.Parent.GroupID
		props["project.parent.version"] = p.Parent.Version
	}
	interp := interpolator{props: props}

	eff := &Effective{
		Coordinate: coordinate.Coordinate{Group: groupID, Artifact: p.ArtifactID, Version: version},
		Packaging:  interp.expand(p.Packaging),
		Managed:    map[coordinate.Module]Dependency{},
	}

	// Managed entries: nearest declaration wins, then imported BOMs in order.
	var imports []Dependency
	for _, proj := range chain {
		if proj.DependencyManagement == nil {
			continue
		}
		for _, d := range proj.DependencyManagement.Dependencies {
			d = interp.dependency(d)
			if d.Scope == ScopeImport && (d.Type == "pom") {
				imports = append(imports, d)
				continue
			}
			eff.addManaged(d)
		}
	}
	for _, imp := range imports {
		if imp.Version == "" {
			return nil, fmt.Errorf("imported bom %s has no version", imp.Module())
		}
		bomProject, err := loader.LoadPOM(ctx, imp.Coordinate())
		if err != nil {
			return nil, fmt.Errorf("load imported bom %s: %w", imp.Coordinate(), err)
		}
		bom, err := build(ctx, bomProject, loader, depth+1)
		if err != nil {
			return nil, err
		}
		for _, m := range bom.ManagedKeys {
			eff.addManaged(bom.Managed[m])
		}
	}

	// Dependencies: ancestors first, children override same module.
	seen := map[coordinate.Module]int{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, d := range chain[i].Dependencies {
			d = interp.dependency(d)
			if managed, ok := eff.Managed[d.Module()]; ok {
				if d.Version == "" {
					d.Version = managed.Version
				}
				if d.Scope == "" {
					d.Scope = managed.Scope
				}
				if len(d.Exclusions) == 0 {
					d.Exclusions = managed.Exclusions
				}
			}
			if idx, ok := seen[d.Module()]; ok {
				eff.Dependencies[idx] = d
				continue
			}
			seen[d.Module()] = len(eff.Dependencies)
			eff.Dependencies = append(eff.Dependencies, d)
		}
	}
	return eff, nil
}

func (e *Effective) addManaged(d Dependency) {
	m := d.Module()
	if _, exists := e.Managed[m]; exists {
		return
	}
	e.Managed[m] = d
	e.ManagedKeys = append(e.ManagedKeys, m)
}

var propertyRef = regexp.MustCompile(`\$\{([^}]+)\}`)

type interpolator struct {
	props map[string]string
}

// expand substitutes ${name} references, repeating until no known
// reference remains. Unknown references are left as written.
func (in interpolator) expand(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < 10 && strings.Contains(s, "${"); i++ {
		next := propertyRef.ReplaceAllStringFunc(s, func(ref string) string {
			name := ref[2 : len(ref)-1]
			if v, ok := in.props[name]; ok {
				return v
			}
			return ref
		})
		if next == s {
			break
		}
		s = next
	}
	return s
}

func (in interpolator) dependency(d Dependency) Dependency {
	d.GroupID = in.expand(d.GroupID)
	d.ArtifactID = in.expand(d.ArtifactID)
	d.Version = in.expand(d.Version)
	d.Type = in.expand(d.Type)
	d.Classifier = in.expand(d.Classifier)
	d.Scope = in.expand(d.Scope)
	d.Optional = in.expand(d.Optional)
	if len(d.Exclusions) > 0 {
		excl := make([]Exclusion, len(d.Exclusions))
		for i, e := range d.Exclusions {
			excl[i] = Exclusion{GroupID: in.expand(e.GroupID), ArtifactID: in.expand(e.ArtifactID)}
		}
		d.Exclusions = excl
	}
	return d
}
