// Package resolve provides the task that resolves every classpath of the
// build from the declared repositories.
package resolve

import (
	"context"

	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/workspace"
)

// TaskName is the name of the resolve task.
const TaskName = "resolve"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run resolves all configurations and stores the result on the workspace.
func Run(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	logger := ctxlog.FromContext(ctx)

	result, err := ws.Resolver.Resolve(ctx, ws.Model)
	if err != nil {
		return dag.Failed, err
	}
	ws.SetResolved(result)

	for _, name := range result.Configurations() {
		logger.Debug("Resolved configuration.", "configuration", name, "modules", len(result.Classpath(name)))
	}
	logger.Info("📚 Dependencies resolved.", "configurations", len(result.Configurations()))
	return dag.Success, nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        TaskName,
		Description: "Resolves all dependency configurations.",
		Run:         Run,
	})
}
