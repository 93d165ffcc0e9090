package resolver

import (
	"fmt"
	"io"

	"github.com/vk/jarsmith/internal/coordinate"
)

// Artifact is one resolved module of a classpath.
type Artifact struct {
	// Coordinate carries the selected concrete version.
	Coordinate coordinate.Coordinate
	// Requested is the version asked for by the edge that placed the module.
	Requested string
	// Path is the local archive. Empty for modules without one, such as
	// POM-packaged aggregators.
	Path       string
	Repository string
}

// HasArchive reports whether the artifact contributes a file.
func (a Artifact) HasArchive() bool { return a.Path != "" }

// Result holds the resolved classpaths of a build.
type Result struct {
	order      []string
	classpaths map[string][]Artifact
}

func newResult() *Result {
	return &Result{classpaths: make(map[string][]Artifact)}
}

func (r *Result) set(name string, artifacts []Artifact) {
	if _, ok := r.classpaths[name]; !ok {
		r.order = append(r.order, name)
	}
	r.classpaths[name] = artifacts
}

// Configurations returns the configuration names in resolution order.
func (r *Result) Configurations() []string {
	return append([]string(nil), r.order...)
}

// Classpath returns the artifacts of a configuration in classpath order.
func (r *Result) Classpath(name string) []Artifact {
	return r.classpaths[name]
}

// Files returns the archive paths of a configuration in classpath order.
func (r *Result) Files(name string) []string {
	var files []string
	for _, a := range r.classpaths[name] {
		if a.HasArchive() {
			files = append(files, a.Path)
		}
	}
	return files
}

// WriteReport prints every configuration with its resolved modules. A
// module whose selected version differs from the one requested where it
// was placed shows both.
func (r *Result) WriteReport(w io.Writer) error {
	for i, name := range r.order {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		artifacts := r.classpaths[name]
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
		if len(artifacts) == 0 {
			if _, err := fmt.Fprintln(w, "No dependencies"); err != nil {
				return err
			}
			continue
		}
		for j, a := range artifacts {
			branch := "+--- "
			if j == len(artifacts)-1 {
				branch = `\--- `
			}
			line := a.Coordinate.Module().String() + ":" + a.Requested
			if a.Requested != a.Coordinate.Version {
				line += " -> " + a.Coordinate.Version
			}
			if _, err := fmt.Fprintln(w, branch+line); err != nil {
				return err
			}
		}
	}
	return nil
}
