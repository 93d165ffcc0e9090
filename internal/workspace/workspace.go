// Package workspace carries the state shared by the tasks of one build: the
// loaded build file, the project layout, the dependency resolver, the
// toolchain and the results tasks hand to each other.
package workspace

import (
	"errors"
	"io"
	"path/filepath"
	"sync"

	"github.com/vk/jarsmith/internal/archive"
	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/resolver"
	"github.com/vk/jarsmith/internal/toolchain"
)

// ErrNotResolved is returned when a task reads classpaths before the
// resolve task has run.
var ErrNotResolved = errors.New("dependencies have not been resolved")

// Workspace is created once per build invocation.
type Workspace struct {
	Model    *config.Model
	Layout   Layout
	Resolver *resolver.Resolver
	Runner   toolchain.Runner
	// Out receives reports meant for the user rather than the log.
	Out io.Writer

	mu       sync.Mutex
	resolved *resolver.Result
	tests    *toolchain.Summary
	archive  *archive.Summary
}

// New assembles a workspace. The layout is rooted at the model's directory.
func New(model *config.Model, res *resolver.Resolver, runner toolchain.Runner, out io.Writer) *Workspace {
	return &Workspace{
		Model:    model,
		Layout:   NewLayout(model.Dir),
		Resolver: res,
		Runner:   runner,
		Out:      out,
	}
}

// Javac returns the compiler driver configured by the build file.
func (w *Workspace) Javac() *toolchain.Javac {
	return toolchain.NewJavac(w.Model.Compile.Executable, w.Runner)
}

// JUnit returns the test launcher driver configured by the build file.
func (w *Workspace) JUnit() *toolchain.JUnitPlatform {
	return toolchain.NewJUnitPlatform(w.Model.Test.Executable, w.Runner)
}

// ArchivePath is where the jar task writes the archive.
func (w *Workspace) ArchivePath() string {
	return filepath.Join(w.Layout.Libs(), w.Model.Project.ArchiveName())
}

// SetResolved stores the resolved classpaths.
func (w *Workspace) SetResolved(r *resolver.Result) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.resolved = r
}

// Resolved returns the resolved classpaths.
func (w *Workspace) Resolved() (*resolver.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.resolved == nil {
		return nil, ErrNotResolved
	}
	return w.resolved, nil
}

// SetTestSummary stores the outcome of the test task.
func (w *Workspace) SetTestSummary(s *toolchain.Summary) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tests = s
}

// TestSummary returns the test summary, or nil when no tests ran.
func (w *Workspace) TestSummary() *toolchain.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tests
}

// SetArchive stores the written archive.
func (w *Workspace) SetArchive(s *archive.Summary) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.archive = s
}

// Archive returns the written archive, or nil when none was assembled.
func (w *Workspace) Archive() *archive.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.archive
}
