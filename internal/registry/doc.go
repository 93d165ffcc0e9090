// Package registry provides the central "glue" for the module system.
//
// The Registry stores the task definitions contributed by the compiled-in
// modules: each task's name, the tasks it depends on and the Go function that
// performs it. During startup the registry is populated and then validated so
// that every dependency names a registered task and the task graph is acyclic,
// turning wiring mistakes into startup errors instead of build-time surprises.
package registry
