package registry

import (
	"strings"

	"romnorm/internal/inputkind"
)

// ConverterDefinition describes one external converter.
type ConverterDefinition struct {
	ConverterID     string
	Name            string
	ToolKey         string
	ExePath         string
	Enabled         bool
	PlatformIDs     []string
	Extensions      []string
	InputKinds      []inputkind.Kind
	OutputExtension string
	ArgsTemplate    []string
}

// FormatDefinition describes the preferred shape of one platform's inputs.
type FormatDefinition struct {
	PlatformID        string
	FormatID          string
	InputKinds        []inputkind.Kind
	RequiredManifests []string
	PreferredOutputs  []string
}

// AcceptsKind reports whether the converter lists kind among its input kinds.
func (d ConverterDefinition) AcceptsKind(kind inputkind.Kind) bool {
	return inputkind.Contains(d.InputKinds, kind)
}

// AcceptsKind reports whether the format applies to inputs of kind.
func (f FormatDefinition) AcceptsKind(kind inputkind.Kind) bool {
	return inputkind.Contains(f.InputKinds, kind)
}

// PreferredOutputs returns the preferred output extensions for platformID
// and kind. A format listing the kind wins; otherwise the first format for
// the platform is used. Unknown platforms yield nil.
func PreferredOutputs(formats []FormatDefinition, platformID string, kind inputkind.Kind) []string {
	platformID = strings.TrimSpace(platformID)
	if platformID == "" {
		return nil
	}
	var fallback *FormatDefinition
	for i := range formats {
		format := &formats[i]
		if !strings.EqualFold(format.PlatformID, platformID) {
			continue
		}
		if format.AcceptsKind(kind) {
			return append([]string(nil), format.PreferredOutputs...)
		}
		if fallback == nil {
			fallback = format
		}
	}
	if fallback != nil {
		return append([]string(nil), fallback.PreferredOutputs...)
	}
	return nil
}

func normalizeConverter(def ConverterDefinition) ConverterDefinition {
	def.ConverterID = strings.TrimSpace(def.ConverterID)
	def.Name = strings.TrimSpace(def.Name)
	def.ToolKey = strings.TrimSpace(def.ToolKey)
	def.ExePath = strings.TrimSpace(def.ExePath)
	def.PlatformIDs = trimList(def.PlatformIDs)
	def.Extensions = extensionList(def.Extensions)
	def.InputKinds = kindList(def.InputKinds)
	def.OutputExtension = inputkind.NormalizeExtension(def.OutputExtension)
	if def.ArgsTemplate == nil {
		def.ArgsTemplate = []string{}
	}
	return def
}

func normalizeFormat(def FormatDefinition) FormatDefinition {
	def.PlatformID = strings.TrimSpace(def.PlatformID)
	def.FormatID = strings.TrimSpace(def.FormatID)
	def.InputKinds = kindList(def.InputKinds)
	def.RequiredManifests = trimList(def.RequiredManifests)
	def.PreferredOutputs = extensionList(def.PreferredOutputs)
	return def
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

func extensionList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := inputkind.NormalizeExtension(value)
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func kindList(values []inputkind.Kind) []inputkind.Kind {
	out := make([]inputkind.Kind, 0, len(values))
	for _, value := range values {
		if inputkind.Contains(out, value) {
			continue
		}
		out = append(out, value)
	}
	return out
}
