// Package dependencies provides the report task listing each resolved
// classpath.
package dependencies

import (
	"context"
	"fmt"

	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Run writes the dependency report to the workspace output.
func Run(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	result, err := ws.Resolved()
	if err != nil {
		return dag.Failed, err
	}
	if err := result.WriteReport(ws.Out); err != nil {
		return dag.Failed, fmt.Errorf("write dependency report: %w", err)
	}
	return dag.Success, nil
}

// Register registers the task with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "dependencies",
		Description: "Displays the resolved dependencies of every configuration.",
		DependsOn:   []string{"resolve"},
		Run:         Run,
	})
}
