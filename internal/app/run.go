package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/resolver"
	"github.com/vk/jarsmith/internal/telemetry"
	"github.com/vk/jarsmith/internal/workspace"
)

// Run loads the build file and executes the requested tasks.
func (a *App) Run(ctx context.Context) error {
	logger := a.logger.With("build_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	shutdown, err := telemetry.Setup(ctx, "jarsmith")
	if err != nil {
		logger.Warn("Tracing disabled.", "error", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("Flushing traces failed.", "error", err)
		}
	}()

	model, err := a.loader.Load(ctx, a.config.BuildFile)
	if err != nil {
		return fmt.Errorf("failed to load build file: %w", err)
	}
	logger.Debug("Build file loaded.", "path", a.config.BuildFile, "project", model.Project.Name)

	chain, closeCache, err := a.repositories(ctx, model)
	if err != nil {
		return err
	}
	defer closeCache()

	full, err := a.registry.Graph()
	if err != nil {
		return fmt.Errorf("failed to build task graph: %w", err)
	}
	plan, err := dag.Plan(full, a.config.Tasks, a.config.Exclude)
	if err != nil {
		return fmt.Errorf("failed to plan tasks: %w", err)
	}

	if err := a.registry.Sequence(plan); err != nil {
		return fmt.Errorf("failed to plan tasks: %w", err)
	}

	ws := workspace.New(model, resolver.New(chain, resolver.WithWorkers(a.config.Workers)), a.runner, a.outW)
	tasks, err := a.registry.Bind(plan, ws, a.config.Exclude)
	if err != nil {
		return fmt.Errorf("failed to plan tasks: %w", err)
	}
	exec, err := dag.NewExecutor(plan, tasks, a.config.Workers)
	if err != nil {
		return fmt.Errorf("failed to plan tasks: %w", err)
	}

	logger.Info("🚀 Starting build...", "project", model.Project.Name, "tasks", a.config.Tasks, "excluded", a.config.Exclude, "workers", a.config.Workers)
	start := time.Now()
	report, runErr := exec.Run(ctx)
	elapsed := time.Since(start)

	for _, id := range report.Order {
		logger.Debug("Task outcome.", "task", id, "outcome", report.Outcomes[id].String(), "duration", report.Durations[id])
	}
	if runErr != nil {
		logger.Error("🏁 Build failed.", "failed", report.Failed(), "duration", elapsed)
		return fmt.Errorf("build failed: %w", runErr)
	}
	logger.Info("🏁 Build finished.", "tasks", len(report.Order), "duration", elapsed)
	return nil
}
