package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Validator checks the shape of a parsed definitions document.
type Validator interface {
	Validate(kind DocumentKind, doc map[string]any) error
}

// NewValidator returns the validator for mode: "schema" selects JSON Schema
// validation, "structural" selects field-level checks.
func NewValidator(mode string) (Validator, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "schema":
		return NewSchemaValidator()
	case "structural":
		return NewStructuralValidator(), nil
	default:
		return nil, fmt.Errorf("unknown validation mode %q", mode)
	}
}

var supportedVersions = mustConstraint("^1")

func mustConstraint(value string) *semver.Constraints {
	c, err := semver.NewConstraint(value)
	if err != nil {
		panic(err)
	}
	return c
}

// checkVersion accepts documents without a version and documents whose
// version parses as 1.x.
func checkVersion(doc map[string]any) error {
	raw, ok := doc["version"]
	if !ok || raw == nil {
		return nil
	}
	var text string
	switch v := raw.(type) {
	case string:
		text = strings.TrimSpace(v)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Errorf("version must be a string or number, got %T", raw)
	}
	version, err := semver.NewVersion(text)
	if err != nil {
		return fmt.Errorf("version %q: %w", text, err)
	}
	if !supportedVersions.Check(version) {
		return fmt.Errorf("unsupported document version %s", version)
	}
	return nil
}
