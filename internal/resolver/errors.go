package resolver

import (
	"errors"
	"strings"

	"github.com/vk/jarsmith/internal/coordinate"
)

// ErrNoVersion is reported for a dependency that has no version and no
// managed version.
var ErrNoVersion = errors.New("no version declared and none managed")

// ResolutionError reports a coordinate that could not be resolved together
// with the chain of modules that required it.
type ResolutionError struct {
	Coordinate coordinate.Coordinate
	// Path lists the requiring modules, outermost first. Empty for a
	// declaration in the build file.
	Path []coordinate.Coordinate
	Err  error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("could not resolve ")
	b.WriteString(e.Coordinate.String())
	if len(e.Path) > 0 {
		b.WriteString(" (required by ")
		for i, c := range e.Path {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(c.String())
		}
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Err }
