package coordinate

import (
	"strings"
)

// qualifiers lists the well-known qualifiers in ascending order. The empty
// string stands for a release.
var qualifiers = []string{"alpha", "beta", "milestone", "rc", "snapshot", "", "sp"}

var qualifierAliases = map[string]string{
	"ga":      "",
	"final":   "",
	"release": "",
	"cr":      "rc",
}

const releaseQualifierIndex = "5"

// Version is a parsed version string that can be ordered.
type Version struct {
	raw   string
	items *listItem
}

// ParseVersion parses a version string. Every string is a valid version.
func ParseVersion(s string) Version {
	return Version{raw: s, items: parseItems(strings.ToLower(s))}
}

// String returns the version as written.
func (v Version) String() string {
	return v.raw
}

// IsSnapshot reports whether the version is a SNAPSHOT.
func (v Version) IsSnapshot() bool {
	return strings.HasSuffix(strings.ToUpper(v.raw), "SNAPSHOT")
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after o.
func (v Version) Compare(o Version) int {
	a, b := v.items, o.items
	if a == nil {
		a = &listItem{}
	}
	if b == nil {
		b = &listItem{}
	}
	return a.compare(b)
}

// CompareVersions compares two version strings.
func CompareVersions(a, b string) int {
	return ParseVersion(a).Compare(ParseVersion(b))
}

// item is one component of a parsed version.
type item interface {
	compare(other item) int
	isNull() bool
}

type intItem struct {
	// digits holds the decimal value without leading zeros ("" is zero).
	digits string
}

func newIntItem(s string) *intItem {
	return &intItem{digits: strings.TrimLeft(s, "0")}
}

func (i *intItem) isNull() bool { return i.digits == "" }

func (i *intItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		if i.isNull() {
			return 0
		}
		return 1
	case *intItem:
		if len(i.digits) != len(o.digits) {
			if len(i.digits) < len(o.digits) {
				return -1
			}
			return 1
		}
		return strings.Compare(i.digits, o.digits)
	case *stringItem:
		return 1
	case *listItem:
		return 1
	}
	return 0
}

type stringItem struct {
	value string
}

func newStringItem(s string, followedByDigit bool) *stringItem {
	if followedByDigit && len(s) == 1 {
		switch s[0] {
		case 'a':
			s = "alpha"
		case 'b':
			s = "beta"
		case 'm':
			s = "milestone"
		}
	}
	if alias, ok := qualifierAliases[s]; ok {
		s = alias
	}
	return &stringItem{value: s}
}

func (s *stringItem) isNull() bool { return s.value == "" }

func comparableQualifier(q string) string {
	for i, known := range qualifiers {
		if known == q {
			return string(rune('0' + i))
		}
	}
	return "7-" + q
}

func (s *stringItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		return strings.Compare(comparableQualifier(s.value), releaseQualifierIndex)
	case *intItem:
		return -1
	case *stringItem:
		return strings.Compare(comparableQualifier(s.value), comparableQualifier(o.value))
	case *listItem:
		return -1
	}
	return 0
}

type listItem struct {
	items []item
}

func (l *listItem) add(it item) { l.items = append(l.items, it) }

func (l *listItem) isNull() bool { return len(l.items) == 0 }

func (l *listItem) normalize() {
	for i := len(l.items) - 1; i >= 0; i-- {
		last := l.items[i]
		if last.isNull() {
			l.items = append(l.items[:i], l.items[i+1:]...)
			continue
		}
		if _, ok := last.(*listItem); !ok {
			break
		}
	}
}

func (l *listItem) compare(other item) int {
	switch o := other.(type) {
	case nil:
		if len(l.items) == 0 {
			return 0
		}
		return l.items[0].compare(nil)
	case *intItem:
		return -1
	case *stringItem:
		return 1
	case *listItem:
		n := max(len(l.items), len(o.items))
		for i := 0; i < n; i++ {
			var left, right item
			if i < len(l.items) {
				left = l.items[i]
			}
			if i < len(o.items) {
				right = o.items[i]
			}
			var result int
			switch {
			case left == nil && right == nil:
				result = 0
			case left == nil:
				result = -right.compare(nil)
			default:
				result = left.compare(right)
			}
			if result != 0 {
				return result
			}
		}
		return 0
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseItem(digit bool, s string) item {
	if digit {
		return newIntItem(s)
	}
	return newStringItem(s, false)
}

// parseItems splits a lowercased version into nested items. A '-' or a
// transition between digits and letters opens a nested list.
func parseItems(version string) *listItem {
	root := &listItem{}
	list := root
	stack := []*listItem{list}

	digit := false
	start := 0
	push := func() {
		next := &listItem{}
		list.add(next)
		list = next
		stack = append(stack, next)
	}

	for i := 0; i < len(version); i++ {
		c := version[i]
		switch {
		case c == '.':
			if i == start {
				list.add(newIntItem("0"))
			} else {
				list.add(parseItem(digit, version[start:i]))
			}
			start = i + 1
		case c == '-':
			if i == start {
				list.add(newIntItem("0"))
			} else {
				list.add(parseItem(digit, version[start:i]))
			}
			start = i + 1
			push()
		case isDigit(c):
			if !digit && i > start {
				list.add(newStringItem(version[start:i], true))
				start = i
				push()
			}
			digit = true
		default:
			if digit && i > start {
				list.add(parseItem(true, version[start:i]))
				start = i
				push()
			}
			digit = false
		}
	}
	if len(version) > start {
		list.add(parseItem(digit, version[start:]))
	}

	for i := len(stack) - 1; i >= 0; i-- {
		stack[i].normalize()
	}
	return root
}
