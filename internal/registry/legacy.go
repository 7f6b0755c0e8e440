package registry

import (
	"fmt"
	"strings"
	"unicode"

	"romnorm/internal/config"
	"romnorm/internal/inputkind"
)

var legacyPlaceholders = strings.NewReplacer("{src}", "{input}", "{dst}", "{output}")

// SynthesizeLegacy converts the legacy features.sorting.conversion block into
// converter definitions. Each enabled rule becomes one converter; rules that
// cannot be expressed are skipped and reported in the returned warnings.
func SynthesizeLegacy(legacy config.LegacyConversion) ([]ConverterDefinition, []string) {
	if !legacy.Enabled {
		return []ConverterDefinition{}, nil
	}

	defs := make([]ConverterDefinition, 0, len(legacy.Rules))
	var warnings []string
	usedIDs := make(map[string]bool, len(legacy.Rules))

	for i, rule := range legacy.Rules {
		if !rule.IsEnabled() {
			continue
		}
		label := rule.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		exe := strings.TrimSpace(legacy.Tools[rule.Tool])
		if exe == "" {
			warnings = append(warnings, fmt.Sprintf("rule %s: tool %q has no path in tools", label, rule.Tool))
			continue
		}
		kinds := inferKinds(rule.Extensions)
		if len(kinds) == 0 {
			warnings = append(warnings, fmt.Sprintf("rule %s: no extensions to infer input kinds from", label))
			continue
		}
		if ext := inputkind.NormalizeExtension(rule.ToExtension); ext == "" || ext == "." {
			warnings = append(warnings, fmt.Sprintf("rule %s: to_extension %q is not a usable extension", label, rule.ToExtension))
			continue
		}

		args := make([]string, 0, len(rule.Args))
		for _, arg := range rule.Args {
			args = append(args, legacyPlaceholders.Replace(arg))
		}

		id := slugify(rule.Name)
		if id == "" {
			id = fmt.Sprintf("rule_%d", i+1)
		}
		id = uniqueID(id, usedIDs)
		usedIDs[id] = true

		defs = append(defs, normalizeConverter(ConverterDefinition{
			ConverterID:     id,
			Name:            rule.Name,
			ToolKey:         rule.Tool,
			ExePath:         exe,
			Enabled:         true,
			PlatformIDs:     rule.Systems,
			Extensions:      rule.Extensions,
			InputKinds:      kinds,
			OutputExtension: rule.ToExtension,
			ArgsTemplate:    args,
		}))
	}
	return defs, warnings
}

// uniqueID returns base, or base_N with the smallest N >= 2 not yet in used.
func uniqueID(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !used[candidate] {
			return candidate
		}
	}
}

func inferKinds(extensions []string) []inputkind.Kind {
	kinds := make([]inputkind.Kind, 0, len(extensions))
	for _, ext := range extensions {
		ext = inputkind.NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		kind := inputkind.ClassifyName("input" + ext)
		if !inputkind.Contains(kinds, kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func slugify(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
