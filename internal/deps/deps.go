package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"romnorm/internal/registry"
)

// Requirement defines an external tool romnorm relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Resolved    string
	Detail      string
}

// LookPathFunc resolves a command to an executable path.
type LookPathFunc func(string) (string, error)

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	return CheckBinariesWith(exec.LookPath, requirements)
}

// CheckBinariesWith is CheckBinaries with an explicit resolver.
func CheckBinariesWith(lookPath LookPathFunc, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := lookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Resolved = resolved
		results = append(results, status)
	}
	return results
}

// ConverterRequirements lists one requirement per converter definition.
// Disabled converters are reported as optional so they never fail a check.
func ConverterRequirements(defs []registry.ConverterDefinition) []Requirement {
	requirements := make([]Requirement, 0, len(defs))
	for _, def := range defs {
		desc := fmt.Sprintf("Converts %s to %s", describeExtensions(def.Extensions), def.OutputExtension)
		if !def.Enabled {
			desc += " (disabled)"
		}
		requirements = append(requirements, Requirement{
			Name:        def.ConverterID,
			Command:     def.ExePath,
			Description: desc,
			Optional:    !def.Enabled,
		})
	}
	return requirements
}

func describeExtensions(exts []string) string {
	if len(exts) == 0 {
		return "any input"
	}
	return strings.Join(exts, ", ")
}
