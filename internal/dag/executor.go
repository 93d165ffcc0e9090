package dag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/jarsmith/internal/ctxlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vk/jarsmith/internal/dag"

// RunFunc performs a task. A nil error with a zero outcome counts as Success.
type RunFunc func(ctx context.Context) (Outcome, error)

// Task binds a graph node to the work it performs.
type Task struct {
	ID  string
	Run RunFunc
	// Excluded tasks are not run and end SKIPPED; their dependents proceed.
	Excluded bool
}

// Report is the result of one executor run.
type Report struct {
	// Order lists every task in a stable topological order.
	Order     []string
	Outcomes  map[string]Outcome
	Errors    map[string]error
	Durations map[string]time.Duration
}

// Failed returns the IDs of tasks that failed, in topological order.
func (r *Report) Failed() []string {
	var ids []string
	for _, id := range r.Order {
		if r.Outcomes[id] == Failed {
			ids = append(ids, id)
		}
	}
	return ids
}

// state is the per-run bookkeeping for one node.
type state struct {
	task       Task
	depCount   atomic.Int32
	outcome    atomic.Int32
	err        error
	duration   time.Duration
	dependents []*state
	// done guards the single transition to a final outcome.
	done sync.Once
}

// Executor runs a graph of tasks on a bounded worker pool.
type Executor struct {
	order      []string
	states     map[string]*state
	numWorkers int
	wg         sync.WaitGroup
}

// NewExecutor validates that every node of g has a task and that g has no
// cycles. workers below one are raised to one.
func NewExecutor(g *Graph, tasks []Task, workers int) (*Executor, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, &GraphError{Reason: err.Error()}
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, &GraphError{Reason: err.Error()}
	}
	if workers < 1 {
		workers = 1
	}

	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	states := make(map[string]*state, len(order))
	for _, id := range order {
		t, ok := byID[id]
		if !ok || t.Run == nil {
			return nil, &GraphError{Task: id, Reason: "no task bound to node"}
		}
		states[id] = &state{task: t}
	}
	for _, id := range order {
		deps, _ := g.Dependencies(id)
		states[id].depCount.Store(int32(len(deps)))
		dependents, _ := g.Dependents(id)
		for _, d := range dependents {
			states[id].dependents = append(states[id].dependents, states[d])
		}
	}

	return &Executor{order: order, states: states, numWorkers: workers}, nil
}

// Run executes the graph and returns the per-task report. The error is the
// first failure in topological order, or the context error if the parent
// context was canceled before everything ran.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	readyChan := make(chan *state, len(e.states))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, id := range e.order {
		if s := e.states[id]; s.depCount.Load() == 0 {
			logger.Debug("Found root task.", "task", id)
			readyChan <- s
		}
	}

	e.wg.Add(len(e.states))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	report := &Report{
		Order:     e.order,
		Outcomes:  make(map[string]Outcome, len(e.states)),
		Errors:    make(map[string]error),
		Durations: make(map[string]time.Duration, len(e.states)),
	}
	var rootCause error
	for _, id := range e.order {
		s := e.states[id]
		o := Outcome(s.outcome.Load())
		report.Outcomes[id] = o
		report.Durations[id] = s.duration
		if s.err != nil {
			report.Errors[id] = s.err
		}
		if o == Failed && rootCause == nil {
			rootCause = fmt.Errorf("task '%s' failed: %w", id, s.err)
		}
	}

	if rootCause != nil {
		return report, rootCause
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// finish records a final outcome exactly once and releases the WaitGroup.
func (e *Executor) finish(s *state, o Outcome, err error, d time.Duration) bool {
	finished := false
	s.done.Do(func() {
		s.err = err
		s.duration = d
		s.outcome.Store(int32(o))
		e.wg.Done()
		finished = true
	})
	return finished
}

// skipDependents recursively marks all downstream tasks NOT-RUN.
func (e *Executor) skipDependents(ctx context.Context, s *state) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range s.dependents {
		if e.finish(dependent, NotRun, nil, 0) {
			logger.Warn("Task not run due to upstream outcome.", "task", dependent.task.ID, "dependency", s.task.ID)
			e.skipDependents(ctx, dependent)
		}
	}
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *state, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	tracer := otel.Tracer(tracerName)

	for s := range readyChan {
		taskLogger := logger.With("workerID", workerID, "task", s.task.ID)

		if ctx.Err() != nil {
			if e.finish(s, NotRun, nil, 0) {
				taskLogger.Warn("Build canceled, task not run.")
				e.skipDependents(ctx, s)
			}
			continue
		}

		if s.task.Excluded {
			taskLogger.Info("⏭️ Task excluded.")
			e.finish(s, Skipped, nil, 0)
			e.release(readyChan, s)
			continue
		}

		taskLogger.Info("▶️ Running task.")
		spanCtx, span := tracer.Start(ctx, s.task.ID, trace.WithAttributes(attribute.String("jarsmith.task", s.task.ID)))
		taskCtx := ctxlog.WithLogger(spanCtx, taskLogger)

		start := time.Now()
		outcome, err := s.task.Run(taskCtx)
		elapsed := time.Since(start)

		switch {
		case err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil:
			outcome, err = NotRun, nil
		case err != nil:
			outcome = Failed
		case outcome == Failed:
			err = errors.New("task reported failure")
		case outcome == Pending:
			outcome = Success
		}

		span.SetAttributes(attribute.String("jarsmith.outcome", outcome.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		e.finish(s, outcome, err, elapsed)

		if outcome == Failed {
			taskLogger.Error("❌ Task failed.", "error", err, "duration", elapsed)
			cancel()
			e.skipDependents(ctx, s)
			continue
		}
		if outcome == NotRun {
			taskLogger.Warn("Task interrupted by cancellation.")
			e.skipDependents(ctx, s)
			continue
		}

		taskLogger.Info("✅ Task finished.", "outcome", outcome.String(), "duration", elapsed)
		e.release(readyChan, s)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// release unlocks dependents whose prerequisites have all completed.
func (e *Executor) release(readyChan chan *state, s *state) {
	for _, dependent := range s.dependents {
		if dependent.depCount.Add(-1) == 0 {
			readyChan <- dependent
		}
	}
}
