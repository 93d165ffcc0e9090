package error_handling

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/jarsmith/internal/app"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/repository"
	"github.com/vk/jarsmith/internal/resolver"
	"github.com/vk/jarsmith/internal/testutil"
	"github.com/vk/jarsmith/internal/toolchain"
)

const archiveRel = "build/libs/tacocloud-0.0.1-SNAPSHOT.jar"

func TestUnresolvableCoordinateStopsBeforeCompilation(t *testing.T) {
	repo := testutil.SampleRepository(t)
	dir := testutil.SampleProject(t, repo, `
dependency "implementation" "org.example:missing:2.0" {}
`, nil)
	jdk := &testutil.FakeJDK{}

	result := testutil.RunBuild(t, app.Config{ProjectDir: dir}, jdk)
	require.Error(t, result.Err)

	var resErr *resolver.ResolutionError
	require.ErrorAs(t, result.Err, &resErr)
	assert.Equal(t, "org.example:missing", resErr.Coordinate.Module().String())
	assert.ErrorIs(t, result.Err, repository.ErrNotFound)
	assert.Contains(t, result.Err.Error(), "task 'resolve' failed")

	assert.Zero(t, jdk.Invoked("javac"))
	testutil.AssertTaskRan(t, result, "compileJava", "NOT-RUN")
	assert.NoFileExists(t, filepath.Join(dir, archiveRel))
}

func TestFailingTestsLeaveNoArchive(t *testing.T) {
	repo := testutil.SampleRepository(t)
	dir := testutil.SampleProject(t, repo, "", nil)

	// A passing build first, so a stale archive exists.
	ok := testutil.RunBuild(t, app.Config{ProjectDir: dir}, &testutil.FakeJDK{})
	require.NoError(t, ok.Err, ok.LogOutput)
	require.FileExists(t, filepath.Join(dir, archiveRel))

	failing := filepath.Join(dir, "src", "test", "java", "tacos", "TacoCloudApplicationTest.java")
	require.NoError(t, os.WriteFile(failing, []byte("class TacoCloudApplicationTest { FAIL }"), 0o644))

	result := testutil.RunBuild(t, app.Config{ProjectDir: dir}, &testutil.FakeJDK{})
	require.Error(t, result.Err)

	var testErr *toolchain.TestFailureError
	require.ErrorAs(t, result.Err, &testErr)
	assert.Equal(t, 1, testErr.Summary.Failed)
	assert.Equal(t, "1 of 1 tests failed: tacos.TacoCloudApplicationTest.works()", testErr.Error())

	testutil.AssertTaskNotStarted(t, result, "jar")
	testutil.AssertTaskRan(t, result, "jar", "NOT-RUN")
	assert.NoFileExists(t, filepath.Join(dir, archiveRel))
}

func TestCompileErrorFailsBuild(t *testing.T) {
	repo := testutil.SampleRepository(t)
	dir := testutil.SampleProject(t, repo, "", map[string]string{
		"src/main/java/tacos/Broken.java": "class Broken { COMPILE_ERROR }",
	})
	jdk := &testutil.FakeJDK{}

	result := testutil.RunBuild(t, app.Config{ProjectDir: dir}, jdk)
	require.Error(t, result.Err)

	var compileErr *toolchain.CompileError
	require.ErrorAs(t, result.Err, &compileErr)
	assert.Equal(t, "compileJava", compileErr.Task)
	assert.Contains(t, compileErr.Diagnostics, "Broken.java:1: error")

	assert.Equal(t, 1, jdk.Invoked("javac"))
	testutil.AssertTaskNotStarted(t, result, "compileTestJava")
	testutil.AssertTaskNotStarted(t, result, "jar")
}

func TestUnknownTask(t *testing.T) {
	repo := testutil.SampleRepository(t)
	dir := testutil.SampleProject(t, repo, "", nil)

	result := testutil.RunBuild(t, app.Config{ProjectDir: dir, Tasks: []string{"bootRun"}}, &testutil.FakeJDK{})
	var graphErr *dag.GraphError
	require.ErrorAs(t, result.Err, &graphErr)
	assert.Equal(t, "bootRun", graphErr.Task)
}

func TestInvalidBuildFile(t *testing.T) {
	dir := testutil.WriteProject(t, map[string]string{
		"build.hcl": `project "a" {}
project "b" {}`,
	})

	result := testutil.RunBuild(t, app.Config{ProjectDir: dir}, &testutil.FakeJDK{})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to load build file")
}

func TestCanceledBuild(t *testing.T) {
	repo := testutil.SampleRepository(t)
	dir := testutil.SampleProject(t, repo, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := testutil.RunBuildWithContext(ctx, t, app.Config{ProjectDir: dir}, &testutil.FakeJDK{})
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, context.Canceled), result.Err)
	assert.NoFileExists(t, filepath.Join(dir, archiveRel))
}
