package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Command is one external process invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Output returns stdout and stderr joined, trimmed of surrounding space.
func (r *Result) Output() string {
	var b strings.Builder
	b.Write(bytes.TrimSpace(r.Stdout))
	if len(bytes.TrimSpace(r.Stderr)) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.Write(bytes.TrimSpace(r.Stderr))
	}
	return b.String()
}

// Runner starts a process and waits for it. A non-zero exit code is not an
// error; failing to start the process is.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(cmd.Path), ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, fmt.Errorf("failed to execute %s: %w", cmd.Path, err)
	}
	return res, nil
}

// Locate returns the executable to run for a JDK tool: the configured path
// when set, otherwise the tool under $JAVA_HOME/bin, otherwise the bare
// name for a PATH lookup.
func Locate(tool, configured string) string {
	if configured != "" {
		return configured
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidate := filepath.Join(home, "bin", tool)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return tool
}

func joinPath(paths []string) string {
	return strings.Join(paths, string(os.PathListSeparator))
}
