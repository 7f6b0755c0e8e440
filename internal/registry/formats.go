package registry

import (
	"context"
	"fmt"
)

// FormatRegistry loads platform format definitions. There is no fallback:
// a missing document is an empty registry.
type FormatRegistry struct {
	path      string
	validator Validator
}

// NewFormatRegistry constructs a FormatRegistry reading path.
func NewFormatRegistry(path string, validator Validator) *FormatRegistry {
	return &FormatRegistry{path: path, validator: validator}
}

// Path returns the persisted document location.
func (r *FormatRegistry) Path() string { return r.path }

// Load returns the format definitions. A missing document yields an empty
// list and no error; an invalid one yields an empty list and an error
// wrapping ErrInvalidDocument.
func (r *FormatRegistry) Load(ctx context.Context) ([]FormatDefinition, error) {
	if err := ctx.Err(); err != nil {
		return []FormatDefinition{}, err
	}
	doc, found, err := readGeneric(r.path)
	if err != nil {
		return []FormatDefinition{}, err
	}
	if !found {
		return []FormatDefinition{}, nil
	}
	if err := r.validator.Validate(FormatsDocument, doc); err != nil {
		return []FormatDefinition{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, r.path, err)
	}
	var typed formatDocument
	if err := decodeTyped(doc, &typed); err != nil {
		return []FormatDefinition{}, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, r.path, err)
	}
	defs := make([]FormatDefinition, 0, len(typed.Formats))
	for _, entry := range typed.Formats {
		defs = append(defs, entry.definition())
	}
	return defs, nil
}
