package toolchain

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/vk/jarsmith/internal/ctxlog"
)

// CompileRequest is one compiler invocation for a source set.
type CompileRequest struct {
	// Task names the build task, used in diagnostics.
	Task          string
	Sources       []string
	Classpath     []string
	ProcessorPath []string
	Release       string
	Encoding      string
	OutputDir     string
	GeneratedDir  string
	Args          []string
	Dir           string
}

// Javac invokes the Java compiler.
type Javac struct {
	executable string
	runner     Runner
}

// NewJavac creates a compiler driver. An empty executable is located via
// JAVA_HOME or PATH.
func NewJavac(executable string, runner Runner) *Javac {
	return &Javac{executable: Locate("javac", executable), runner: runner}
}

// Command builds the compiler command line for req. Sources are passed in
// sorted order.
func (j *Javac) Command(req CompileRequest) Command {
	var args []string
	if req.Release != "" {
		args = append(args, "--release", req.Release)
	}
	if req.Encoding != "" {
		args = append(args, "-encoding", req.Encoding)
	}
	args = append(args, "-d", req.OutputDir)
	if req.GeneratedDir != "" {
		args = append(args, "-s", req.GeneratedDir)
	}
	if len(req.Classpath) > 0 {
		args = append(args, "-classpath", joinPath(req.Classpath))
	}
	if len(req.ProcessorPath) > 0 {
		args = append(args, "-processorpath", joinPath(req.ProcessorPath))
	} else {
		args = append(args, "-proc:none")
	}
	args = append(args, req.Args...)

	sources := append([]string(nil), req.Sources...)
	sort.Strings(sources)
	args = append(args, sources...)

	return Command{Path: j.executable, Args: args, Dir: req.Dir}
}

// Compile runs the compiler. A non-zero exit yields a *CompileError carrying
// the compiler output.
func (j *Javac) Compile(ctx context.Context, req CompileRequest) error {
	logger := ctxlog.FromContext(ctx).With("task", req.Task)
	cmd := j.Command(req)
	logger.Debug("Invoking compiler.", "command", cmd.String(), "sources", len(req.Sources))

	res, err := j.runner.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("task '%s': %w", req.Task, err)
	}
	if res.ExitCode != 0 {
		return &CompileError{Task: req.Task, ExitCode: res.ExitCode, Diagnostics: res.Output()}
	}
	if out := res.Output(); out != "" {
		logger.Warn("Compiler reported diagnostics.", "output", out)
	}
	return nil
}

// WriteProcessorPath prints the annotation processor path of a compile
// task, one entry per line.
func WriteProcessorPath(w io.Writer, task string, paths []string) error {
	if _, err := fmt.Fprintf(w, "AnnotationProcessorPath for '%s' is\n", task); err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}
