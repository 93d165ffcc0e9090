package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/vk/jarsmith/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError is the exit code for invalid invocations.
const usageError = 2

// settings are the options that can come from the environment; flags
// override them.
type settings struct {
	File        string   `env:"JARSMITH_FILE"          envDefault:"build.hcl"`
	ProjectDir  string   `env:"JARSMITH_PROJECT_DIR"   envDefault:"."`
	ExcludeTask []string `env:"JARSMITH_EXCLUDE_TASKS" envSeparator:","`
	Workers     int      `env:"JARSMITH_WORKERS"       envDefault:"4"`
	Offline     bool     `env:"JARSMITH_OFFLINE"`
	CacheDir    string   `env:"JARSMITH_CACHE_DIR"`
	LogLevel    string   `env:"JARSMITH_LOG_LEVEL"     envDefault:"info"`
	LogFormat   string   `env:"JARSMITH_LOG_FORMAT"    envDefault:"text"`
}

// taskList is a repeatable flag. The first use on the command line replaces
// whatever the environment supplied.
type taskList struct {
	values *[]string
	set    bool
}

func (l *taskList) String() string {
	if l.values == nil {
		return ""
	}
	return strings.Join(*l.values, ",")
}

func (l *taskList) Set(v string) error {
	if !l.set {
		*l.values = nil
		l.set = true
	}
	*l.values = append(*l.values, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var s settings
	if err := env.Parse(&s); err != nil {
		return nil, false, &ExitError{Code: usageError, Message: fmt.Sprintf("parse env: %v", err)}
	}

	flagSet := flag.NewFlagSet("jarsmith", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
jarsmith - builds, tests and packages a JVM project described in HCL.

Usage:
  jarsmith [options] [TASK...]

Arguments:
  TASK
    Tasks to run (default "build"): resolve, compileJava, processResources,
    classes, compileTestJava, processTestResources, testClasses, test, jar,
    assemble, build, dependencies, clean.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&s.File, "file", s.File, "Path to the build file, relative to the project directory.")
	flagSet.StringVar(&s.File, "f", s.File, "Path to the build file (shorthand).")
	flagSet.StringVar(&s.ProjectDir, "project-dir", s.ProjectDir, "Project directory.")
	excludes := &taskList{values: &s.ExcludeTask}
	flagSet.Var(excludes, "exclude-task", "Task to exclude from the run. Repeatable.")
	flagSet.Var(excludes, "x", "Task to exclude from the run (shorthand).")
	flagSet.IntVar(&s.Workers, "workers", s.Workers, "Number of concurrent task workers.")
	flagSet.BoolVar(&s.Offline, "offline", s.Offline, "Resolve only from the artifact cache and local repositories.")
	flagSet.StringVar(&s.CacheDir, "cache-dir", s.CacheDir, "Artifact cache directory.")
	flagSet.StringVar(&s.LogFormat, "log-format", s.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: usageError, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	config, err := app.NewConfig(app.Config{
		BuildFile:  s.File,
		ProjectDir: s.ProjectDir,
		Tasks:      flagSet.Args(),
		Exclude:    s.ExcludeTask,
		Workers:    s.Workers,
		Offline:    s.Offline,
		CacheDir:   s.CacheDir,
		LogFormat:  strings.ToLower(s.LogFormat),
		LogLevel:   strings.ToLower(s.LogLevel),
	})
	if err != nil {
		return nil, false, &ExitError{Code: usageError, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
