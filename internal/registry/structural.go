package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"romnorm/internal/inputkind"
)

// StructuralValidator decodes documents into typed structs and checks field
// presence with struct tags. It needs no schema files.
type StructuralValidator struct {
	validate *validator.Validate
}

// NewStructuralValidator constructs a StructuralValidator.
func NewStructuralValidator() *StructuralValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("input_kind", func(fl validator.FieldLevel) bool {
		_, err := inputkind.Parse(fl.Field().String())
		return err == nil
	})
	return &StructuralValidator{validate: v}
}

// Validate implements Validator.
func (v *StructuralValidator) Validate(kind DocumentKind, doc map[string]any) error {
	if err := checkVersion(doc); err != nil {
		return err
	}
	var target any
	switch kind {
	case ConvertersDocument:
		target = &converterDocument{}
	case FormatsDocument:
		target = &formatDocument{}
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
	if err := decodeTyped(doc, target); err != nil {
		return fmt.Errorf("decode %s document: %w", kind, err)
	}
	if err := v.validate.Struct(target); err != nil {
		return describeFieldErrors(err)
	}
	return nil
}

func describeFieldErrors(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("structural validation failed: %s", strings.Join(parts, "; "))
}
