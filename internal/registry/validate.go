package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/jarsmith/internal/ctxlog"
)

// ValidateRegistry checks that every task has a name and a function, that
// every dependency names a registered task, and that the graph is acyclic.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, def := range r.Tasks() {
		if def.Name == "" {
			errs = append(errs, "task with empty name")
		}
		if def.Run == nil {
			errs = append(errs, fmt.Sprintf("task '%s': no run function", def.Name))
		}
		for _, dep := range def.DependsOn {
			if _, ok := r.tasks[dep]; !ok {
				errs = append(errs, fmt.Sprintf("task '%s': depends on unknown task '%s'", def.Name, dep))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	g, err := r.Graph()
	if err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if err := g.DetectCycles(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	logger.Debug("Registry validation passed.", "tasks", len(r.tasks))
	return nil
}
