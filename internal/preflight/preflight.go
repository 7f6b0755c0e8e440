package preflight

import (
	"context"

	"romnorm/internal/config"
	"romnorm/internal/deps"
	"romnorm/internal/registry"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for cfg followed by one check per
// converter definition.
func RunAll(ctx context.Context, cfg *config.Config, converters []registry.ConverterDefinition) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}
	if cfg.Paths.TempDir != "" {
		results = append(results, CheckDirectoryAccess("Temp directory", cfg.Paths.TempDir))
	}

	if ctx.Err() != nil {
		return results
	}
	statuses := deps.CheckBinaries(deps.ConverterRequirements(converters))
	return append(results, CheckConverters(statuses)...)
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
