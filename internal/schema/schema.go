// Package schema holds the gohcl decoding targets for a build file.
//
// Decoding happens in stages: the Outline separates `locals` and `project`
// from the rest so their values can seed the evaluation context used for
// every other block.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// --- Stage one: outline ---

// Locals is a `locals` block. Its attributes are evaluated in order, so a
// local may refer to locals defined before it.
type Locals struct {
	Body hcl.Body `hcl:",remain"`
}

// ProjectHeader is a `project` block before its attributes are evaluated.
type ProjectHeader struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Outline is the first decoding stage of a build file.
type Outline struct {
	Locals  []*Locals        `hcl:"locals,block"`
	Project []*ProjectHeader `hcl:"project,block"`
	Remain  hcl.Body         `hcl:",remain"`
}

// --- Stage two: evaluated blocks ---

// Project is the evaluated body of the `project` block.
type Project struct {
	Group               string `hcl:"group,optional"`
	Version             string `hcl:"version,optional"`
	SourceCompatibility string `hcl:"source_compatibility,optional"`
}

// Repository is a `repository "<name>"` block. Exactly one of URL and Path
// must be set.
type Repository struct {
	Name string `hcl:"name,label"`
	URL  string `hcl:"url,optional"`
	Path string `hcl:"path,optional"`
}

// DependencyManagement is the `dependency_management` block.
type DependencyManagement struct {
	Imports []string          `hcl:"imports,optional"`
	Managed map[string]string `hcl:"managed,optional"`
	Enforce *bool             `hcl:"enforce,optional"`
}

// Dependencies is the `dependencies` block: one list of coordinates per
// scope.
type Dependencies struct {
	Implementation          []string `hcl:"implementation,optional"`
	RuntimeOnly             []string `hcl:"runtime_only,optional"`
	CompileOnly             []string `hcl:"compile_only,optional"`
	AnnotationProcessor     []string `hcl:"annotation_processor,optional"`
	TestImplementation      []string `hcl:"test_implementation,optional"`
	TestRuntimeOnly         []string `hcl:"test_runtime_only,optional"`
	TestCompileOnly         []string `hcl:"test_compile_only,optional"`
	TestAnnotationProcessor []string `hcl:"test_annotation_processor,optional"`
	DevelopmentOnly         []string `hcl:"development_only,optional"`
}

// Dependency is a `dependency "<scope>" "<coordinate>"` block, used when a
// declaration needs exclusions.
type Dependency struct {
	Scope      string   `hcl:"scope,label"`
	Coordinate string   `hcl:"coordinate,label"`
	Exclude    []string `hcl:"exclude,optional"`
}

// Compile is the `compile` block.
type Compile struct {
	Encoding   string   `hcl:"encoding,optional"`
	Args       []string `hcl:"args,optional"`
	Executable string   `hcl:"executable,optional"`
}

// Test is the `test` block.
type Test struct {
	Platform      string `hcl:"platform,optional"`
	FailOnFailure *bool  `hcl:"fail_on_failure,optional"`
	Launcher      string `hcl:"launcher,optional"`
	Executable    string `hcl:"executable,optional"`
}

// Jar is the `jar` block.
type Jar struct {
	MainClass  string            `hcl:"main_class,optional"`
	Duplicates string            `hcl:"duplicates,optional"`
	Exclude    []string          `hcl:"exclude,optional"`
	Attributes map[string]string `hcl:"attributes,optional"`
}

// BuildFile is everything after the outline has been taken out.
type BuildFile struct {
	Repositories []*Repository         `hcl:"repository,block"`
	Management   *DependencyManagement `hcl:"dependency_management,block"`
	Dependencies []*Dependencies       `hcl:"dependencies,block"`
	Dependency   []*Dependency         `hcl:"dependency,block"`
	Compile      *Compile              `hcl:"compile,block"`
	Test         *Test                 `hcl:"test,block"`
	Jar          *Jar                  `hcl:"jar,block"`
}
