package coordinate

import (
	"fmt"
	"strings"
)

// Module identifies a library independently of its version.
type Module struct {
	Group    string
	Artifact string
}

// String returns the "group:artifact" form of the module.
func (m Module) String() string {
	return m.Group + ":" + m.Artifact
}

// ParseModule parses a "group:artifact" string.
func ParseModule(s string) (Module, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Module{}, fmt.Errorf("invalid module %q: expected group:artifact", s)
	}
	return Module{Group: parts[0], Artifact: parts[1]}, nil
}

// Coordinate is a (group, artifact, version) triple. Version may be empty,
// a concrete version, a range or a dynamic selector.
type Coordinate struct {
	Group    string
	Artifact string
	Version  string
}

// Parse parses "group:artifact" or "group:artifact:version".
func Parse(s string) (Coordinate, error) {
	trimmed := strings.TrimSpace(s)
	parts := strings.Split(trimmed, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:artifact[:version]", s)
	}
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty component %d", s, i+1)
		}
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Module returns the version-less identity of the coordinate.
func (c Coordinate) Module() Module {
	return Module{Group: c.Group, Artifact: c.Artifact}
}

// WithVersion returns a copy of c carrying the given version.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v
	return c
}

// HasVersion reports whether a version (of any kind) is present.
func (c Coordinate) HasVersion() bool {
	return c.Version != ""
}

// String returns the textual "group:artifact[:version]" form.
func (c Coordinate) String() string {
	if c.Version == "" {
		return c.Module().String()
	}
	return c.Group + ":" + c.Artifact + ":" + c.Version
}

// RepositoryPath returns the slash-separated path of the coordinate's file
// with the given extension in the Maven repository layout, for example
// "org/projectlombok/lombok/1.18.26/lombok-1.18.26.jar".
func (c Coordinate) RepositoryPath(ext string) string {
	return c.Module().RepositoryDir() + "/" + c.Version + "/" + c.Artifact + "-" + c.Version + "." + ext
}

// RepositoryDir returns the module's directory in the Maven repository
// layout, for example "org/projectlombok/lombok".
func (m Module) RepositoryDir() string {
	return strings.ReplaceAll(m.Group, ".", "/") + "/" + m.Artifact
}
