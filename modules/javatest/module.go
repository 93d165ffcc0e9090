// Package javatest provides the task running the test suite on the JUnit
// Platform.
package javatest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/fsutil"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/resolver"
	"github.com/vk/jarsmith/internal/toolchain"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run executes the compiled tests. Without compiled test classes the task
// completes with NO-SOURCE. Failing tests fail the task when the build file
// sets fail_on_failure, and any previously assembled archive is removed so
// a failing build never leaves one behind.
func Run(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	logger := ctxlog.FromContext(ctx)
	testSet, mainSet := ws.Layout.Test(), ws.Layout.Main()

	classes, err := fsutil.FindFilesByExtension(testSet.ClassesDir, ".class")
	if err != nil {
		return dag.Failed, fmt.Errorf("find test classes: %w", err)
	}
	if len(classes) == 0 {
		return dag.NoSource, nil
	}

	resolved, err := ws.Resolved()
	if err != nil {
		return dag.Failed, err
	}
	launcher, err := ws.Resolver.Artifact(ctx, ws.Model.Test.Launcher)
	if err != nil {
		return dag.Failed, fmt.Errorf("resolve test launcher: %w", err)
	}

	var classpath []string
	classpath = append(classpath, testSet.Output()...)
	classpath = append(classpath, mainSet.Output()...)
	classpath = append(classpath, resolved.Files(resolver.TestRuntimeClasspath)...)

	summary, err := ws.JUnit().Run(ctx, toolchain.TestRequest{
		Task:       "test",
		Launcher:   launcher.Path,
		ScanDirs:   []string{testSet.ClassesDir},
		Classpath:  classpath,
		ReportsDir: ws.Layout.TestResults(),
		Dir:        ws.Layout.ProjectDir,
	})
	if err != nil {
		return dag.Failed, err
	}
	ws.SetTestSummary(summary)

	logger.Info("🧪 Tests finished.",
		"total", summary.Total, "passed", summary.Passed,
		"failed", summary.Failed, "skipped", summary.Skipped)

	if summary.Failed == 0 {
		return dag.Success, nil
	}
	for _, r := range summary.FailedTests() {
		logger.Error("Test failed.", "test", r.ID(), "message", r.Message)
	}
	if !ws.Model.Test.FailOnFailure {
		logger.Warn("Ignoring test failures.", "failed", summary.Failed)
		return dag.Success, nil
	}
	if err := os.Remove(ws.ArchivePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Could not remove stale archive.", "path", ws.ArchivePath(), "error", err)
	}
	return dag.Failed, &toolchain.TestFailureError{Summary: summary}
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "test",
		Description: "Runs the test suite.",
		DependsOn:   []string{"testClasses"},
		Run:         Run,
	})
}
