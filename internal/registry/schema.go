package registry

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaValidator validates documents against embedded JSON Schemas.
type SchemaValidator struct {
	schemas map[DocumentKind]*jsonschema.Schema
}

// NewSchemaValidator compiles the embedded schemas.
func NewSchemaValidator() (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	files := map[DocumentKind]string{
		ConvertersDocument: "schemas/converters.schema.json",
		FormatsDocument:    "schemas/platform_formats.schema.json",
	}
	schemas := make(map[DocumentKind]*jsonschema.Schema, len(files))
	for kind, name := range files {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(data)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		schemas[kind] = schema
	}
	return &SchemaValidator{schemas: schemas}, nil
}

// Validate implements Validator.
func (v *SchemaValidator) Validate(kind DocumentKind, doc map[string]any) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("no schema for %s documents", kind)
	}
	result := schema.Validate(doc)
	if !result.Valid {
		return fmt.Errorf("schema validation failed: %s", describeSchemaErrors(result))
	}
	return checkVersion(doc)
}

func describeSchemaErrors(result *jsonschema.EvaluationResult) string {
	if result == nil || len(result.Errors) == 0 {
		return "document does not match schema"
	}
	parts := make([]string, 0, len(result.Errors))
	for key, evalErr := range result.Errors {
		if evalErr == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", key, evalErr.Error()))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
