// Package testutil holds harnesses shared by the integration tests: a
// temp-dir project writer, a fake JDK and a build runner.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/app"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// WriteProject writes files, keyed by slash-separated relative path, into a
// fresh project directory and returns it.
func WriteProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// RunBuild runs one build against the project in cfg.ProjectDir with jdk
// standing in for the real tools. BuildFile defaults to build.hcl.
func RunBuild(t *testing.T, cfg app.Config, jdk *FakeJDK) *HarnessResult {
	t.Helper()
	return RunBuildWithContext(context.Background(), t, cfg, jdk)
}

// RunBuildWithContext is RunBuild with a caller-provided context.
func RunBuildWithContext(ctx context.Context, t *testing.T, cfg app.Config, jdk *FakeJDK) *HarnessResult {
	t.Helper()
	if cfg.BuildFile == "" {
		cfg.BuildFile = "build.hcl"
	}

	var (
		testApp  *app.App
		logs     *app.SafeBuffer
		panicErr any
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp, logs = app.SetupAppTest(t, cfg, app.WithRunner(jdk))
	}()
	if panicErr != nil {
		return &HarnessResult{Err: fmt.Errorf("application startup panicked | %v", panicErr)}
	}

	err := testApp.Run(ctx)
	return &HarnessResult{LogOutput: logs.String(), Err: err, App: testApp}
}
