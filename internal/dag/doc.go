// Package dag is the execution layer of a build. It holds the task graph,
// narrows it to what the requested tasks need, and runs it on a pool of
// workers fed by a ready queue: a task is queued only once every task it
// depends on has completed, so no task runs before or alongside one of its
// prerequisites.
//
// The first failure cancels the run. Tasks downstream of a failure end up
// NOT-RUN and the failing task's error is returned as the root cause.
package dag
