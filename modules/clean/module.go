package clean

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run deletes the build directory.
func Run(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	dir := ws.Layout.BuildDir
	ctxlog.FromContext(ctx).Debug("Removing build directory.", "path", dir)
	if err := os.RemoveAll(dir); err != nil {
		return dag.Failed, fmt.Errorf("remove build directory: %w", err)
	}
	return dag.Success, nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "clean",
		Description: "Deletes the build directory.",
		RunsFirst:   true,
		Run:         Run,
	})
}
