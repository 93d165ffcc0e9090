package workspace

import "path/filepath"

// SourceSet locates the inputs and outputs of one source set.
type SourceSet struct {
	Name         string
	JavaDir      string
	ResourcesDir string
	ClassesDir   string
	// ResourcesOut receives the processed resources.
	ResourcesOut string
	// GeneratedDir receives annotation processor sources.
	GeneratedDir string
}

// Output returns the directories a consumer of the set puts on its classpath.
func (s SourceSet) Output() []string {
	return []string{s.ClassesDir, s.ResourcesOut}
}

// Layout is the conventional directory structure of a project.
type Layout struct {
	ProjectDir string
	BuildDir   string
}

// NewLayout returns the layout rooted at projectDir.
func NewLayout(projectDir string) Layout {
	return Layout{ProjectDir: projectDir, BuildDir: filepath.Join(projectDir, "build")}
}

// Main is the production source set.
func (l Layout) Main() SourceSet { return l.sourceSet("main") }

// Test is the test source set.
func (l Layout) Test() SourceSet { return l.sourceSet("test") }

func (l Layout) sourceSet(name string) SourceSet {
	return SourceSet{
		Name:         name,
		JavaDir:      filepath.Join(l.ProjectDir, "src", name, "java"),
		ResourcesDir: filepath.Join(l.ProjectDir, "src", name, "resources"),
		ClassesDir:   filepath.Join(l.BuildDir, "classes", "java", name),
		ResourcesOut: filepath.Join(l.BuildDir, "resources", name),
		GeneratedDir: filepath.Join(l.BuildDir, "generated", "sources", "annotationProcessor", "java", name),
	}
}

// TestResults is where the test task writes its XML reports.
func (l Layout) TestResults() string {
	return filepath.Join(l.BuildDir, "test-results", "test")
}

// Libs is where the archive is written.
func (l Layout) Libs() string {
	return filepath.Join(l.BuildDir, "libs")
}
