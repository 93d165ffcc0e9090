package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTask runs when no task is named.
const DefaultTask = "build"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// BuildFile is resolved against ProjectDir when relative.
	BuildFile  string
	ProjectDir string
	Tasks      []string
	Exclude    []string

	Workers  int
	Offline  bool
	CacheDir string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BuildFile == "" {
		return nil, errors.New("BuildFile is a required configuration field and cannot be empty")
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}
	if !filepath.IsAbs(cfg.BuildFile) {
		cfg.BuildFile = filepath.Join(cfg.ProjectDir, cfg.BuildFile)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if len(cfg.Tasks) == 0 {
		cfg.Tasks = []string{DefaultTask}
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir()
	}
	return &cfg, nil
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "jarsmith")
	}
	return filepath.Join(os.TempDir(), "jarsmith-cache")
}
