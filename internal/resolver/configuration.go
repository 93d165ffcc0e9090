package resolver

import (
	"slices"

	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/pom"
)

// Configuration names.
const (
	CompileClasspath        = "compileClasspath"
	RuntimeClasspath        = "runtimeClasspath"
	AnnotationProcessor     = "annotationProcessor"
	TestCompileClasspath    = "testCompileClasspath"
	TestRuntimeClasspath    = "testRuntimeClasspath"
	TestAnnotationProcessor = "testAnnotationProcessor"
	DevelopmentOnly         = "developmentOnly"
)

// Configuration describes which declarations feed a classpath and which
// descriptor scopes are followed below them.
type Configuration struct {
	Name       string
	Scopes     []config.Scope
	Transitive []string
}

var (
	compileOnly    = []string{pom.ScopeCompile}
	compileRuntime = []string{pom.ScopeCompile, pom.ScopeRuntime}
)

// Configurations lists every configuration in resolution order.
var Configurations = []Configuration{
	{
		Name:       CompileClasspath,
		Scopes:     []config.Scope{config.ScopeImplementation, config.ScopeCompileOnly},
		Transitive: compileOnly,
	},
	{
		Name:       RuntimeClasspath,
		Scopes:     []config.Scope{config.ScopeImplementation, config.ScopeRuntimeOnly},
		Transitive: compileRuntime,
	},
	{
		Name:       AnnotationProcessor,
		Scopes:     []config.Scope{config.ScopeAnnotationProcessor},
		Transitive: compileRuntime,
	},
	{
		Name:       TestCompileClasspath,
		Scopes:     []config.Scope{config.ScopeImplementation, config.ScopeTestImplementation, config.ScopeTestCompileOnly},
		Transitive: compileOnly,
	},
	{
		Name: TestRuntimeClasspath,
		Scopes: []config.Scope{
			config.ScopeImplementation, config.ScopeRuntimeOnly,
			config.ScopeTestImplementation, config.ScopeTestRuntimeOnly,
		},
		Transitive: compileRuntime,
	},
	{
		Name:       TestAnnotationProcessor,
		Scopes:     []config.Scope{config.ScopeTestAnnotationProcessor},
		Transitive: compileRuntime,
	},
	{
		Name:       DevelopmentOnly,
		Scopes:     []config.Scope{config.ScopeDevelopmentOnly},
		Transitive: compileRuntime,
	},
}

// roots returns the declarations feeding c, in build file order.
func (c Configuration) roots(decls []config.Declaration) []config.Declaration {
	var out []config.Declaration
	for _, d := range decls {
		if slices.Contains(c.Scopes, d.Scope) {
			out = append(out, d)
		}
	}
	return out
}

// follows reports whether a descriptor dependency is part of c's
// transitive closure.
func (c Configuration) follows(d pom.Dependency) bool {
	if d.IsOptional() || d.Classifier != "" {
		return false
	}
	switch d.Type {
	case "", "jar", "bundle", "pom":
	default:
		return false
	}
	return slices.Contains(c.Transitive, d.EffectiveScope())
}
