// Package config defines the format-agnostic model of a build file along
// with the Loader interface that format-specific packages implement.
//
// The `config.Model` is the single source of truth for the resolver, the
// task graph and every task module. Concrete loaders, such as the HCL one,
// live in separate packages and hand back a fully evaluated model.
package config
