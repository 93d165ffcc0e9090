// Package archive assembles a self-contained jar from class and resource
// directories plus the exploded contents of dependency archives.
//
// Output is reproducible: entries carry a fixed timestamp and fixed modes,
// directories are walked in sorted order and dependency archives are read
// in their stored order, so unchanged inputs give byte-identical jars.
package archive
