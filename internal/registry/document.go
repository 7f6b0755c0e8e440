package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"romnorm/internal/inputkind"
)

// ErrInvalidDocument marks a persisted document that exists but could not be
// parsed or failed validation.
var ErrInvalidDocument = errors.New("invalid definitions document")

// DocumentVersion is written into every document this package persists.
const DocumentVersion = "1.0"

// DocumentKind selects the schema a document is validated against.
type DocumentKind string

const (
	ConvertersDocument DocumentKind = "converters"
	FormatsDocument    DocumentKind = "formats"
)

// Locations carries the resolved document paths from the composition root.
type Locations struct {
	ConvertersPath string
	FormatsPath    string
}

type converterEntry struct {
	ConverterID     string   `json:"converter_id" yaml:"converter_id" validate:"required"`
	Name            string   `json:"name,omitempty" yaml:"name,omitempty"`
	ToolKey         string   `json:"tool_key,omitempty" yaml:"tool_key,omitempty"`
	ExePath         string   `json:"exe_path" yaml:"exe_path" validate:"required"`
	Enabled         *bool    `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	PlatformIDs     []string `json:"platform_ids" yaml:"platform_ids"`
	Extensions      []string `json:"extensions" yaml:"extensions"`
	InputKinds      []string `json:"input_kinds" yaml:"input_kinds" validate:"required,min=1,dive,input_kind"`
	OutputExtension string   `json:"output_extension" yaml:"output_extension" validate:"required"`
	ArgsTemplate    []string `json:"args_template" yaml:"args_template" validate:"required"`
}

type converterDocument struct {
	Version    string           `json:"version,omitempty" yaml:"version,omitempty"`
	Converters []converterEntry `json:"converters" yaml:"converters" validate:"required,dive"`
}

type formatEntry struct {
	PlatformID        string   `json:"platform_id" yaml:"platform_id" validate:"required"`
	FormatID          string   `json:"format_id" yaml:"format_id" validate:"required"`
	InputKinds        []string `json:"input_kinds" yaml:"input_kinds" validate:"required,min=1,dive,input_kind"`
	RequiredManifests []string `json:"required_manifests" yaml:"required_manifests"`
	PreferredOutputs  []string `json:"preferred_outputs" yaml:"preferred_outputs"`
}

type formatDocument struct {
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Formats []formatEntry `json:"formats" yaml:"formats" validate:"required,dive"`
}

func (e converterEntry) definition() ConverterDefinition {
	enabled := e.Enabled == nil || *e.Enabled
	return normalizeConverter(ConverterDefinition{
		ConverterID:     e.ConverterID,
		Name:            e.Name,
		ToolKey:         e.ToolKey,
		ExePath:         e.ExePath,
		Enabled:         enabled,
		PlatformIDs:     e.PlatformIDs,
		Extensions:      e.Extensions,
		InputKinds:      parseKinds(e.InputKinds),
		OutputExtension: e.OutputExtension,
		ArgsTemplate:    e.ArgsTemplate,
	})
}

func entryFromConverter(def ConverterDefinition) converterEntry {
	enabled := def.Enabled
	kinds := make([]string, 0, len(def.InputKinds))
	for _, kind := range def.InputKinds {
		kinds = append(kinds, kind.String())
	}
	return converterEntry{
		ConverterID:     def.ConverterID,
		Name:            def.Name,
		ToolKey:         def.ToolKey,
		ExePath:         def.ExePath,
		Enabled:         &enabled,
		PlatformIDs:     nonNil(def.PlatformIDs),
		Extensions:      nonNil(def.Extensions),
		InputKinds:      kinds,
		OutputExtension: def.OutputExtension,
		ArgsTemplate:    nonNil(def.ArgsTemplate),
	}
}

func (e formatEntry) definition() FormatDefinition {
	return normalizeFormat(FormatDefinition{
		PlatformID:        e.PlatformID,
		FormatID:          e.FormatID,
		InputKinds:        parseKinds(e.InputKinds),
		RequiredManifests: e.RequiredManifests,
		PreferredOutputs:  e.PreferredOutputs,
	})
}

func parseKinds(values []string) []inputkind.Kind {
	kinds := make([]inputkind.Kind, 0, len(values))
	for _, value := range values {
		kind, err := inputkind.Parse(value)
		if err != nil {
			continue
		}
		kinds = append(kinds, kind)
	}
	return kinds
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// readGeneric parses the document at path into plain JSON-shaped values.
// found is false only when the file does not exist.
func readGeneric(path string) (map[string]any, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("%w: read %s: %v", ErrInvalidDocument, path, err)
	}

	var raw any
	if isJSONPath(path) {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, true, fmt.Errorf("%w: parse %s: %v", ErrInvalidDocument, path, err)
	}

	// Round-trip through encoding/json so validators only ever see
	// map[string]any, []any, string, float64, bool and nil.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, true, fmt.Errorf("%w: normalize %s: %v", ErrInvalidDocument, path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, true, fmt.Errorf("%w: %s: document root must be a mapping", ErrInvalidDocument, path)
	}
	if doc == nil {
		return nil, true, fmt.Errorf("%w: %s: document is empty", ErrInvalidDocument, path)
	}
	return doc, true, nil
}

// decodeTyped converts a generic document into one of the typed document
// structs. The version key is handled by checkVersion and skipped here.
func decodeTyped(doc map[string]any, out any) error {
	trimmed := make(map[string]any, len(doc))
	for key, value := range doc {
		if key == "version" {
			continue
		}
		trimmed[key] = value
	}
	data, err := json.Marshal(trimmed)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func encodeDocument(path string, doc any) ([]byte, error) {
	if isJSONPath(path) {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return yaml.Marshal(doc)
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
