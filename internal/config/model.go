package config

import (
	"fmt"
	"strings"

	"github.com/vk/jarsmith/internal/coordinate"
)

// Model is the unified, format-agnostic representation of a build file.
type Model struct {
	// Dir is the project directory; relative paths resolve against it.
	Dir          string
	Project      Project
	Repositories []Repository
	Management   Management
	// Declarations keeps the order of the build file.
	Declarations []Declaration
	Compile      Compile
	Test         Test
	Jar          Jar
}

// Project holds the static project attributes.
type Project struct {
	Name                string
	Group               string
	Version             string
	SourceCompatibility string
}

// ArchiveName returns the file name of the assembled jar.
func (p Project) ArchiveName() string {
	if p.Version == "" {
		return p.Name + ".jar"
	}
	return p.Name + "-" + p.Version + ".jar"
}

// Repository is either a remote URL or a local directory.
type Repository struct {
	Name string
	URL  string
	Path string
}

// IsLocal reports whether the repository is a directory on disk.
func (r Repository) IsLocal() bool { return r.Path != "" }

// Management carries dependency management settings.
type Management struct {
	// Imports are platform BOM coordinates whose managed versions apply.
	Imports []coordinate.Coordinate
	// Managed maps modules to explicit versions.
	Managed map[coordinate.Module]string
	// Enforce makes managed versions override conflict resolution.
	Enforce bool
}

// Scope is a declaration scope named after the build configuration it
// feeds.
type Scope string

// Declaration scopes.
const (
	ScopeImplementation          Scope = "implementation"
	ScopeRuntimeOnly             Scope = "runtime_only"
	ScopeCompileOnly             Scope = "compile_only"
	ScopeAnnotationProcessor     Scope = "annotation_processor"
	ScopeTestImplementation      Scope = "test_implementation"
	ScopeTestRuntimeOnly         Scope = "test_runtime_only"
	ScopeTestCompileOnly         Scope = "test_compile_only"
	ScopeTestAnnotationProcessor Scope = "test_annotation_processor"
	ScopeDevelopmentOnly         Scope = "development_only"
)

// Scopes lists every declaration scope in canonical order.
var Scopes = []Scope{
	ScopeImplementation,
	ScopeRuntimeOnly,
	ScopeCompileOnly,
	ScopeAnnotationProcessor,
	ScopeTestImplementation,
	ScopeTestRuntimeOnly,
	ScopeTestCompileOnly,
	ScopeTestAnnotationProcessor,
	ScopeDevelopmentOnly,
}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	for _, sc := range Scopes {
		if string(sc) == s {
			return sc, nil
		}
	}
	return "", fmt.Errorf("unknown dependency scope %q", s)
}

// Exclusion removes a module from a declaration's transitive closure.
// Either part may be "*".
type Exclusion struct {
	Group    string
	Artifact string
}

// ParseExclusion parses "group:artifact" or "group" (all artifacts).
func ParseExclusion(s string) (Exclusion, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return Exclusion{Group: parts[0], Artifact: "*"}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return Exclusion{Group: parts[0], Artifact: parts[1]}, nil
	}
	return Exclusion{}, fmt.Errorf("invalid exclusion %q: expected group[:artifact]", s)
}

// Matches reports whether the exclusion covers m.
func (e Exclusion) Matches(m coordinate.Module) bool {
	return (e.Group == "*" || e.Group == m.Group) && (e.Artifact == "*" || e.Artifact == m.Artifact)
}

// Declaration is one declared dependency.
type Declaration struct {
	Scope      Scope
	Coordinate coordinate.Coordinate
	Exclusions []Exclusion
}

// Compile configures the Java compiler.
type Compile struct {
	Encoding string
	Args     []string
	// Executable is the compiler; empty means "javac" on PATH.
	Executable string
}

// Test configures the test runner.
type Test struct {
	Platform      string
	FailOnFailure bool
	Launcher      coordinate.Coordinate
	// Executable is the java launcher; empty means "java" on PATH.
	Executable string
}

// Duplicate handling policies for the archive.
const (
	DuplicatesFirst = "first"
	DuplicatesLast  = "last"
)

// Jar configures the archive assembler.
type Jar struct {
	MainClass  string
	Duplicates string
	Exclude    []string
	Attributes map[string]string
}

// Defaults returned for settings the build file leaves out.
const (
	DefaultEncoding = "UTF-8"
	DefaultPlatform = "junit-platform"
	DefaultLauncher = "org.junit.platform:junit-platform-console-standalone:1.9.3"
)
