// Package inputkind classifies ROM and disc-image inputs by their on-disk
// shape.
//
// Classification looks only at whether a path is a directory and at its file
// name; file contents are never read. Every path maps to exactly one Kind.
package inputkind
