// Package preflight provides readiness checks for the directories and
// converter executables romnorm depends on.
//
// The CLI "romnorm doctor" command runs RunAll and renders the results; the
// "run" command uses CheckDirectoryAccess on the output directory before it
// takes the batch lock.
package preflight
