// Package main hosts the romnorm CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls against the
// internal packages: classify and validate inputs, build and execute
// normalization plans, inspect the converter and format registries, copy
// files atomically, and review past runs. Configuration resolution, logger
// setup and registry loading live in commandContext so each subcommand only
// deals with its own flags and output.
package main
