package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every JARSMITH_* variable the parser reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"JARSMITH_FILE", "JARSMITH_PROJECT_DIR", "JARSMITH_EXCLUDE_TASKS", "JARSMITH_WORKERS",
		"JARSMITH_OFFLINE", "JARSMITH_CACHE_DIR", "JARSMITH_LOG_LEVEL", "JARSMITH_LOG_FORMAT",
	} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, exit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "build.hcl", cfg.BuildFile)
	assert.Equal(t, []string{"build"}, cfg.Tasks)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.Offline)
	assert.NotEmpty(t, cfg.CacheDir)
}

func TestParse_Flags(t *testing.T) {
	clearEnv(t)

	cfg, _, err := Parse([]string{
		"-f", "tacocloud.hcl", "--project-dir", "/work/tacocloud",
		"-x", "test", "--exclude-task", "dependencies",
		"--workers", "2", "--offline", "--cache-dir", "/tmp/cache",
		"--log-level", "DEBUG", "--log-format", "json",
		"clean", "jar",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/work/tacocloud", "tacocloud.hcl"), cfg.BuildFile)
	assert.Equal(t, []string{"clean", "jar"}, cfg.Tasks)
	assert.Equal(t, []string{"test", "dependencies"}, cfg.Exclude)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/tmp/cache", cfg.CacheDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_EnvironmentOverlay(t *testing.T) {
	clearEnv(t)
	t.Setenv("JARSMITH_WORKERS", "8")
	t.Setenv("JARSMITH_OFFLINE", "true")
	t.Setenv("JARSMITH_EXCLUDE_TASKS", "test,dependencies")
	t.Setenv("JARSMITH_LOG_LEVEL", "warn")

	cfg, _, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Offline)
	assert.Equal(t, []string{"test", "dependencies"}, cfg.Exclude)
	assert.Equal(t, "warn", cfg.LogLevel)

	// Flags win over the environment.
	cfg, _, err = Parse([]string{"--workers", "1", "-x", "clean"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, []string{"clean"}, cfg.Exclude)
}

func TestParse_Help(t *testing.T) {
	clearEnv(t)

	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "unknown flag", args: []string{"--nope"}, want: "flag provided but not defined"},
		{name: "bad log level", args: []string{"--log-level", "loud"}, want: "invalid log level"},
		{name: "bad log format", args: []string{"--log-format", "xml"}, want: "invalid log format"},
		{name: "zero workers", args: []string{"--workers", "0"}, want: "workers must be at least 1"},
		{name: "bad env", env: map[string]string{"JARSMITH_WORKERS": "many"}, want: "parse env"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
