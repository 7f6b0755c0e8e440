// Package deps reports whether the external converter executables named by
// the converter registry can be resolved on this host.
package deps
