// Package resolver turns dependency declarations into one flattened,
// ordered classpath per build configuration.
//
// Transitive dependencies are read from Maven descriptors. Version
// conflicts are settled by selecting the highest requested version, with
// directly declared concrete versions and enforced managed versions taking
// precedence. Selection only ever moves upwards and is repeated until
// nothing changes, so the outcome is deterministic and the loop ends.
// Descriptors for one breadth-first level are fetched in parallel.
package resolver
