// Package hcl provides the HCL implementation of config.Loader. It parses
// a build file, evaluates locals and project attributes into an evaluation
// context, decodes the remaining blocks against it and translates the
// result into the format-agnostic model.
package hcl
