package toolchain

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/jarsmith/internal/ctxlog"
)

// TestRequest is one test run on the JUnit Platform.
type TestRequest struct {
	Task string
	// Launcher is the console launcher jar.
	Launcher string
	// ScanDirs are the class directories searched for tests.
	ScanDirs   []string
	Classpath  []string
	ReportsDir string
	Dir        string
}

// JUnitPlatform runs tests with the JUnit Platform console launcher.
type JUnitPlatform struct {
	executable string
	runner     Runner
}

// NewJUnitPlatform creates a launcher driver. An empty executable is
// located via JAVA_HOME or PATH.
func NewJUnitPlatform(executable string, runner Runner) *JUnitPlatform {
	return &JUnitPlatform{executable: Locate("java", executable), runner: runner}
}

// Command builds the launcher command line for req.
func (p *JUnitPlatform) Command(req TestRequest) Command {
	args := []string{
		"-jar", req.Launcher,
		"--disable-banner",
		"--details=none",
		"--class-path", joinPath(req.Classpath),
	}
	for _, dir := range req.ScanDirs {
		args = append(args, "--scan-class-path", dir)
	}
	args = append(args, "--reports-dir", req.ReportsDir)
	return Command{Path: p.executable, Args: args, Dir: req.Dir}
}

// Run executes the tests and returns the summary read from the XML
// reports. Failing tests are not an error here; callers apply their own
// failure policy. A launcher that exits non-zero without reporting a
// failed test is an error.
func (p *JUnitPlatform) Run(ctx context.Context, req TestRequest) (*Summary, error) {
	logger := ctxlog.FromContext(ctx).With("task", req.Task)

	if err := os.RemoveAll(req.ReportsDir); err != nil {
		return nil, fmt.Errorf("clear test reports: %w", err)
	}
	if err := os.MkdirAll(req.ReportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create test reports directory: %w", err)
	}

	cmd := p.Command(req)
	logger.Debug("Invoking test launcher.", "command", cmd.String())
	res, err := p.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("task '%s': %w", req.Task, err)
	}

	summary, err := ReadReports(req.ReportsDir)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 && summary.Failed == 0 {
		return nil, fmt.Errorf("test launcher exited with code %d:\n%s", res.ExitCode, res.Output())
	}
	return summary, nil
}
