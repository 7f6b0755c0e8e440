// Package testsupport holds fixtures shared by command and integration tests:
// temp-dir configs, stub converter executables, and sized input files.
package testsupport
