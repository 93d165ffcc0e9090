// Package lifecycle registers the aggregate tasks that group the real work
// under conventional names.
package lifecycle

import (
	"context"

	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func nothing(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
	return dag.Success, nil
}

// Register registers the lifecycle tasks with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "classes",
		Description: "Assembles main classes.",
		DependsOn:   []string{"compileJava", "processResources"},
		Run:         nothing,
	})
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "testClasses",
		Description: "Assembles test classes.",
		DependsOn:   []string{"compileTestJava", "processTestResources"},
		Run:         nothing,
	})
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "assemble",
		Description: "Assembles the outputs of this project.",
		DependsOn:   []string{"jar"},
		Run:         nothing,
	})
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "build",
		Description: "Assembles and tests this project.",
		DependsOn:   []string{"assemble", "test"},
		Run:         nothing,
	})
}
