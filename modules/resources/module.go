// Package resources provides the tasks copying each source set's resources
// into the build directory.
package resources

import (
	"context"

	"github.com/vk/jarsmith/internal/ctxlog"
	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/fsutil"
	"github.com/vk/jarsmith/internal/registry"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Process copies the resources of set. A set without resources completes
// with NO-SOURCE.
func Process(ctx context.Context, set workspace.SourceSet) (dag.Outcome, error) {
	n, err := fsutil.CopyTree(set.ResourcesDir, set.ResourcesOut)
	if err != nil {
		return dag.Failed, err
	}
	if n == 0 {
		return dag.NoSource, nil
	}
	ctxlog.FromContext(ctx).Debug("Copied resources.", "sourceSet", set.Name, "files", n)
	return dag.Success, nil
}

// Register registers the tasks with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "processResources",
		Description: "Processes main resources.",
		Run: func(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
			return Process(ctx, ws.Layout.Main())
		},
	})
	r.RegisterTask(&registry.TaskDefinition{
		Name:        "processTestResources",
		Description: "Processes test resources.",
		Run: func(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error) {
			return Process(ctx, ws.Layout.Test())
		},
	})
}
