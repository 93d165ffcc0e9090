// Package pom reads Maven project descriptors and computes the effective
// dependency information the resolver needs: inherited coordinates,
// interpolated properties, managed versions (including imported BOMs),
// scopes and exclusions.
package pom

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/vk/jarsmith/internal/coordinate"
)

// Project is the subset of a pom.xml that dependency resolution reads.
type Project struct {
	XMLName              xml.Name       `xml:"project"`
	Parent               *Parent        `xml:"parent"`
	GroupID              string         `xml:"groupId"`
	ArtifactID           string         `xml:"artifactId"`
	Version              string         `xml:"version"`
	Packaging            string         `xml:"packaging"`
	Properties           Properties     `xml:"properties"`
	DependencyManagement *DependencySet `xml:"dependencyManagement"`
	Dependencies         []Dependency   `xml:"dependencies>dependency"`
}

// Parent references the parent descriptor a project inherits from.
type Parent struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// Coordinate returns the parent coordinate.
func (p *Parent) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: p.GroupID, Artifact: p.ArtifactID, Version: p.Version}
}

// DependencySet wraps a <dependencies> list, as found in <dependencyManagement>.
type DependencySet struct {
	Dependencies []Dependency `xml:"dependencies>dependency"`
}

// Dependency is one <dependency> element.
type Dependency struct {
	GroupID    string      `xml:"groupId"`
	ArtifactID string      `xml:"artifactId"`
	Version    string      `xml:"version"`
	Type       string      `xml:"type"`
	Classifier string      `xml:"classifier"`
	Scope      string      `xml:"scope"`
	Optional   string      `xml:"optional"`
	Exclusions []Exclusion `xml:"exclusions>exclusion"`
}

// Exclusion removes a transitive module (wildcards allowed) from a
// dependency's subtree.
type Exclusion struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
}

// Matches reports whether the exclusion covers the module.
func (e Exclusion) Matches(m coordinate.Module) bool {
	return (e.GroupID == "*" || e.GroupID == m.Group) && (e.ArtifactID == "*" || e.ArtifactID == m.Artifact)
}

// Module returns the version-less identity of the dependency.
func (d Dependency) Module() coordinate.Module {
	return coordinate.Module{Group: d.GroupID, Artifact: d.ArtifactID}
}

// Coordinate returns the dependency's coordinate.
func (d Dependency) Coordinate() coordinate.Coordinate {
	return coordinate.Coordinate{Group: d.GroupID, Artifact: d.ArtifactID, Version: d.Version}
}

// IsOptional reports whether the dependency is marked optional.
func (d Dependency) IsOptional() bool {
	return strings.EqualFold(strings.TrimSpace(d.Optional), "true")
}

// EffectiveScope returns the scope, defaulting to compile.
func (d Dependency) EffectiveScope() string {
	if d.Scope == "" {
		return ScopeCompile
	}
	return d.Scope
}

// Maven dependency scopes.
const (
	ScopeCompile  = "compile"
	ScopeRuntime  = "runtime"
	ScopeProvided = "provided"
	ScopeTest     = "test"
	ScopeSystem   = "system"
	ScopeImport   = "import"
)

// Properties holds <properties> as a flat map.
type Properties map[string]string

// UnmarshalXML reads arbitrary child elements into the map.
func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	*p = Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}

// Parse decodes a pom.xml document.
func Parse(r io.Reader) (*Project, error) {
	var p Project
	dec := xml.NewDecoder(r)
	dec.Strict = false
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode pom: %w", err)
	}
	p.GroupID = strings.TrimSpace(p.GroupID)
	p.ArtifactID = strings.TrimSpace(p.ArtifactID)
	p.Version = strings.TrimSpace(p.Version)
	p.Packaging = strings.TrimSpace(p.Packaging)
	return &p, nil
}
