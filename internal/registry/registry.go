package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/jarsmith/internal/dag"
	"github.com/vk/jarsmith/internal/workspace"
)

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// RunFunc performs a task against the build's workspace.
type RunFunc func(ctx context.Context, ws *workspace.Workspace) (dag.Outcome, error)

// TaskDefinition describes one build task.
type TaskDefinition struct {
	Name        string
	Description string
	DependsOn   []string
	// RunsFirst orders the task ahead of every other planned task without
	// making them depend on it for planning purposes.
	RunsFirst   bool
	Run         RunFunc
}

// Registry holds all the registered task definitions for a single
// application instance.
type Registry struct {
	tasks map[string]*TaskDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{tasks: make(map[string]*TaskDefinition)}
}

// RegisterTask adds a task definition. Registering the same name twice is a
// programmer error and panics.
func (r *Registry) RegisterTask(def *TaskDefinition) {
	if _, exists := r.tasks[def.Name]; exists {
		panic(fmt.Sprintf("task with name '%s' already registered", def.Name))
	}
	slog.Debug("Registering task.", "name", def.Name, "dependsOn", def.DependsOn)
	r.tasks[def.Name] = def
}

// Task returns the definition registered under name.
func (r *Registry) Task(name string) (*TaskDefinition, bool) {
	def, ok := r.tasks[name]
	return def, ok
}

// Tasks returns every definition, sorted by name.
func (r *Registry) Tasks() []*TaskDefinition {
	defs := make([]*TaskDefinition, 0, len(r.tasks))
	for _, def := range r.tasks {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Graph builds the full task graph: one node per task, one edge per
// declared dependency.
func (r *Registry) Graph() (*dag.Graph, error) {
	g := dag.New()
	for _, def := range r.Tasks() {
		g.AddNode(def.Name)
	}
	for _, def := range r.Tasks() {
		for _, dep := range def.DependsOn {
			if err := g.AddEdge(dep, def.Name); err != nil {
				return nil, &dag.GraphError{Task: def.Name, Reason: err.Error()}
			}
		}
	}
	return g, nil
}

// Sequence applies the RunsFirst ordering to a planned graph.
func (r *Registry) Sequence(g *dag.Graph) error {
	for _, def := range r.Tasks() {
		if !def.RunsFirst || !g.Has(def.Name) {
			continue
		}
		if err := g.Precede(def.Name); err != nil {
			return &dag.GraphError{Task: def.Name, Reason: err.Error()}
		}
	}
	return nil
}

// Bind turns the tasks of g into executable tasks running against ws.
// Tasks named in excluded are marked so the executor skips them.
func (r *Registry) Bind(g *dag.Graph, ws *workspace.Workspace, excluded []string) ([]dag.Task, error) {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}

	var tasks []dag.Task
	for _, name := range g.Nodes() {
		def, ok := r.tasks[name]
		if !ok {
			return nil, &dag.GraphError{Task: name, Reason: "task not registered"}
		}
		run := def.Run
		tasks = append(tasks, dag.Task{
			ID:       name,
			Excluded: skip[name],
			Run: func(ctx context.Context) (dag.Outcome, error) {
				return run(ctx, ws)
			},
		})
	}
	return tasks, nil
}
