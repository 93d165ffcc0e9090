// Package coordinate models Maven-style library coordinates
// (group:artifact:version), the ordering of their version strings, and the
// selectors (exact, range, prefix, latest) a declaration may use to ask for
// a version.
//
// Version ordering follows the Maven ComparableVersion rules: numeric
// components compare numerically, well-known qualifiers order as
// alpha < beta < milestone < rc < snapshot < release < sp, and unknown
// qualifiers sort after all known ones, lexically.
package coordinate
