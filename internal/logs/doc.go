// Package logs reads romnorm.log for the `romnorm logs` command.
//
// Tail prints the last N matching lines with bounded memory and can keep
// following the file as new lines are appended. MatchRunID narrows output
// to a single normalization run for both the JSON and console log formats.
package logs
