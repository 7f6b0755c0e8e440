package normalize

import (
	"slices"
	"strings"

	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
)

// Match selects the converter for item, or reports false when none applies.
//
// Candidates must be enabled, accept the item's kind, list the item's
// platform and extension when they restrict either, and declare both an
// output extension and an executable. Registry order breaks ties. When
// preferredOutputs is non-empty the first candidate producing the earliest
// preferred extension that any candidate satisfies wins; with no preference
// satisfied the first candidate is returned.
func Match(item Item, converters []registry.ConverterDefinition, preferredOutputs []string) (registry.ConverterDefinition, bool) {
	ext := inputkind.Extension(item.InputPath)
	candidates := make([]registry.ConverterDefinition, 0, len(converters))
	for _, def := range converters {
		if eligible(def, item, ext) {
			candidates = append(candidates, def)
		}
	}
	if len(candidates) == 0 {
		return registry.ConverterDefinition{}, false
	}

	for _, preferred := range preferredOutputs {
		preferred = inputkind.NormalizeExtension(preferred)
		if preferred == "" {
			continue
		}
		for _, def := range candidates {
			if inputkind.NormalizeExtension(def.OutputExtension) == preferred {
				return def, true
			}
		}
	}
	return candidates[0], true
}

func eligible(def registry.ConverterDefinition, item Item, ext string) bool {
	if !def.Enabled || !def.AcceptsKind(item.InputKind) {
		return false
	}
	if strings.TrimSpace(def.OutputExtension) == "" || strings.TrimSpace(def.ExePath) == "" {
		return false
	}
	if len(def.PlatformIDs) > 0 && !slices.ContainsFunc(def.PlatformIDs, func(id string) bool {
		return strings.EqualFold(strings.TrimSpace(id), strings.TrimSpace(item.PlatformID))
	}) {
		return false
	}
	if len(def.Extensions) > 0 && !slices.ContainsFunc(def.Extensions, func(e string) bool {
		return inputkind.NormalizeExtension(e) == ext
	}) {
		return false
	}
	return true
}
