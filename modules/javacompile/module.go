// Package javacompile provides the tasks compiling the main and test Java
// source sets.
package javacompile

import (
	"context"
	"fmt"
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

// unit is one source set compilation.
type unit struct {
	task      string
	set       workspace.SourceSet
	classpath string
	processor string
	// extra entries ahead of the resolved classpath.
	extra []string
}

func compile(ctx context.Context, ws *workspace.Workspace, u unit) (dag.Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	sources, err := fsutil.FindFilesByExtension(u.set.JavaDir, ".java")
	if err != nil {
		return dag.Failed, fmt.Errorf("find sources: %w", err)
	}
	if err := os.RemoveAll(u.set.ClassesDir); err != nil {
		return dag.Failed, fmt.Errorf("clear classes: %w", err)
	}
	if len(sources) == 0 {
		logger.Debug("No Java sources.", "dir", u.set.JavaDir)
		return dag.NoSource, nil
	}

	resolved, err := ws.Resolved()
	if err != nil {
		return dag.Failed, err
	}
	processorPath := resolved.Files(u.processor)
	if err := toolchain.WriteProcessorPath(ws.Out, u.task, processorPath); err != nil {
		return dag.Failed, err
	}

	for _, dir := range []string{u.set.ClassesDir, u.set.GeneratedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dag.Failed, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	classpath := append(append([]string(nil), u.extra...), resolved.Files(u.classpath)...)
	err = ws.Javac().Compile(ctx, toolchain.CompileRequest{
		Task:          u.task,
		Sources:       sources,
		Classpath:     classpath,
		ProcessorPath: processorPath,
		Release:       ws.Model.Project.SourceCompatibility,
		Encoding:      ws.Model.Compile.Encoding,
		OutputDir:     u.set.ClassesDir,
		GeneratedDir:  u.set.GeneratedDir,
		Args:          ws.Model.Compile.Args,
		Dir:           ws.Layout.ProjectDir,
	})
	if err != nil {
		return dag.Failed, err
	}
	logger.Info("☕ Compiled sources.", "sourceSet", u.set.Name, "files", len(sources))
	return dag.Success, nil
}

// CompileJava compiles the main source set against compileClasspath.
func CompileJava(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	return compile(ctx, ws, unit{
		task:      "compileJava",
		set:       ws.Layout.Main(),
		classpath: resolver.CompileClasspath,
		processor: resolver.AnnotationProcessor,
	})
}

// CompileTestJava compiles the test source set against the main output and
// testCompileClasspath.
func CompileTestJava(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	return compile(ctx, ws, unit{
		task:      "compileTestJava",
		set:       ws.Layout.Test(),
		classpath: resolver.TestCompileClasspath,
		processor: resolver.TestAnnotationProcessor,
		extra:     ws.Layout.Main().Output(),
	})
}

// Register registers the tasks with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "compileJava",
		Description: "Compiles main Java source.",
		DependsOn:   []string{"resolve"},
		Run:         CompileJava,
	})
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "compileTestJava",
		Description: "Compiles test Java source.",
		DependsOn:   []string{"classes"},
		Run:         CompileTestJava,
	})
}
