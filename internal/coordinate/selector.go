package coordinate

import (
	"fmt"
	"strings"
)

// Selector decides which concrete versions satisfy a requested version.
type Selector interface {
	// Matches reports whether the concrete version satisfies the selector.
	Matches(v Version) bool
	// Dynamic reports whether the selector needs a version listing to be
	// turned into a concrete version.
	Dynamic() bool
	String() string
}

// ParseSelector interprets a requested version string. Empty strings are
// rejected; callers substitute managed versions before parsing.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty version selector")
	case s == "+" || s == "latest.integration":
		return latestSelector{raw: s}, nil
	case s == "latest.release":
		return latestSelector{raw: s, releasesOnly: true}, nil
	case strings.HasSuffix(s, "+"):
		return prefixSelector{prefix: strings.TrimSuffix(s, "+")}, nil
	case strings.HasPrefix(s, "[") || strings.HasPrefix(s, "("):
		return ParseRange(s)
	default:
		return exactSelector{v: ParseVersion(s)}, nil
	}
}

// IsDynamic reports whether s needs a version listing to be resolved.
func IsDynamic(s string) bool {
	sel, err := ParseSelector(s)
	return err == nil && sel.Dynamic()
}

type exactSelector struct{ v Version }

func (e exactSelector) Matches(v Version) bool { return e.v.Compare(v) == 0 }
func (e exactSelector) Dynamic() bool          { return false }
func (e exactSelector) String() string         { return e.v.String() }

type prefixSelector struct{ prefix string }

func (p prefixSelector) Matches(v Version) bool { return strings.HasPrefix(v.String(), p.prefix) }
func (p prefixSelector) Dynamic() bool          { return true }
func (p prefixSelector) String() string         { return p.prefix + "+" }

type latestSelector struct {
	raw          string
	releasesOnly bool
}

func (l latestSelector) Matches(v Version) bool { return !l.releasesOnly || !v.IsSnapshot() }
func (l latestSelector) Dynamic() bool          { return true }
func (l latestSelector) String() string         { return l.raw }

// Range is a union of version intervals written in Maven notation, for
// example "[1.0,2.0)" or "(,1.0],[1.2,)".
type Range struct {
	raw          string
	restrictions []restriction
}

type restriction struct {
	lower          *Version
	lowerInclusive bool
	upper          *Version
	upperInclusive bool
}

// ParseRange parses a Maven version range.
func ParseRange(s string) (*Range, error) {
	r := &Range{raw: s}
	rest := strings.TrimSpace(s)
	for rest != "" {
		if rest[0] != '[' && rest[0] != '(' {
			return nil, fmt.Errorf("invalid version range %q: expected '[' or '('", s)
		}
		end := strings.IndexAny(rest, "])")
		if end < 0 {
			return nil, fmt.Errorf("invalid version range %q: unbounded interval", s)
		}
		res, err := parseRestriction(rest[:end+1])
		if err != nil {
			return nil, fmt.Errorf("invalid version range %q: %w", s, err)
		}
		r.restrictions = append(r.restrictions, res)
		rest = strings.TrimSpace(rest[end+1:])
		if strings.HasPrefix(rest, ",") {
			rest = strings.TrimSpace(rest[1:])
			if rest == "" {
				return nil, fmt.Errorf("invalid version range %q: trailing comma", s)
			}
		} else if rest != "" {
			return nil, fmt.Errorf("invalid version range %q: expected ','", s)
		}
	}
	if len(r.restrictions) == 0 {
		return nil, fmt.Errorf("invalid version range %q: empty", s)
	}
	return r, nil
}

func parseRestriction(spec string) (restriction, error) {
	res := restriction{
		lowerInclusive: spec[0] == '[',
		upperInclusive: spec[len(spec)-1] == ']',
	}
	body := strings.TrimSpace(spec[1 : len(spec)-1])
	bounds := strings.Split(body, ",")
	switch len(bounds) {
	case 1:
		if !res.lowerInclusive || !res.upperInclusive {
			return restriction{}, fmt.Errorf("single version %q must be written as [v]", spec)
		}
		if body == "" {
			return restriction{}, fmt.Errorf("empty interval %q", spec)
		}
		v := ParseVersion(body)
		res.lower, res.upper = &v, &v
	case 2:
		lower, upper := strings.TrimSpace(bounds[0]), strings.TrimSpace(bounds[1])
		if lower != "" {
			v := ParseVersion(lower)
			res.lower = &v
		}
		if upper != "" {
			v := ParseVersion(upper)
			res.upper = &v
		}
		if res.lower != nil && res.upper != nil {
			cmp := res.lower.Compare(*res.upper)
			if cmp > 0 || (cmp == 0 && !(res.lowerInclusive && res.upperInclusive)) {
				return restriction{}, fmt.Errorf("lower bound exceeds upper bound in %q", spec)
			}
		}
	default:
		return restriction{}, fmt.Errorf("too many bounds in %q", spec)
	}
	return res, nil
}

func (r restriction) contains(v Version) bool {
	if r.lower != nil {
		cmp := r.lower.Compare(v)
		if cmp > 0 || (cmp == 0 && !r.lowerInclusive) {
			return false
		}
	}
	if r.upper != nil {
		cmp := r.upper.Compare(v)
		if cmp < 0 || (cmp == 0 && !r.upperInclusive) {
			return false
		}
	}
	return true
}

// Matches reports whether v falls inside any of the intervals.
func (r *Range) Matches(v Version) bool {
	for _, res := range r.restrictions {
		if res.contains(v) {
			return true
		}
	}
	return false
}

// Dynamic is always true for ranges.
func (r *Range) Dynamic() bool { return true }

func (r *Range) String() string { return r.raw }

// Highest returns the highest version among candidates accepted by sel.
func Highest(sel Selector, candidates []string) (string, bool) {
	var best *Version
	for _, c := range candidates {
		v := ParseVersion(c)
		if !sel.Matches(v) {
			continue
		}
		if best == nil || v.Compare(*best) > 0 {
			vv := v
			best = &vv
		}
	}
	if best == nil {
		return "", false
	}
	return best.String(), true
}
