package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/jarsmith/internal/config"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/toolchain"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	config     *Config
	loader     config.Loader
	runner     toolchain.Runner
	httpClient *http.Client
}

// Option customizes an App.
type Option func(*App)

// WithModules replaces the compiled-in modules.
func WithModules(modules ...registry.Module) Option {
	return func(a *App) {
		a.registry = registry.New()
		for _, mod := range modules {
			mod.Register(a.registry)
		}
	}
}

// WithRunner replaces the process runner used for the JDK tools.
func WithRunner(r toolchain.Runner) Option {
	return func(a *App) { a.runner = r }
}

// WithHTTPClient sets the client used for remote repositories.
func WithHTTPClient(c *http.Client) Option {
	return func(a *App) { a.httpClient = c }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// An invalid registry is a programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		loader:     loader,
		runner:     toolchain.ExecRunner{},
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		a.registry = registry.New()
		for _, mod := range coreModules {
			mod.Register(a.registry)
		}
	}
	logger.Debug("All Go modules registered.", "tasks", len(a.registry.Tasks()))

	if err := a.registry.ValidateRegistry(ctx); err != nil {
		panic(err)
	}

	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
