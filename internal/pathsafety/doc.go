// Package pathsafety vets filesystem paths before conversions read or write
// them. It rejects traversal, NUL bytes and paths escaping a base directory,
// and checks read or write permission with access(2).
package pathsafety
