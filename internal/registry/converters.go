package registry

import (
	"context"
	"fmt"
	"log/slog"

	"romnorm/internal/config"
	"romnorm/internal/logging"
)

// EmptyPolicy decides what an explicitly empty converters list means.
type EmptyPolicy string

const (
	// EmptySynthesize treats an empty list like a missing document.
	EmptySynthesize EmptyPolicy = "synthesize"
	// EmptyHonor keeps the empty list, disabling conversion.
	EmptyHonor EmptyPolicy = "honor"
)

// ConverterRegistry loads converter definitions.
type ConverterRegistry struct {
	path      string
	validator Validator
	legacy    config.LegacyConversion
	policy    EmptyPolicy
	readOnly  bool
	logger    *slog.Logger
}

// ConverterOption configures a ConverterRegistry.
type ConverterOption func(*ConverterRegistry)

// WithEmptyPolicy overrides the default EmptySynthesize policy.
func WithEmptyPolicy(policy EmptyPolicy) ConverterOption {
	return func(r *ConverterRegistry) {
		if policy != "" {
			r.policy = policy
		}
	}
}

// WithLogger attaches a logger for synthesis and persistence diagnostics.
func WithLogger(logger *slog.Logger) ConverterOption {
	return func(r *ConverterRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReadOnly makes Load return synthesized definitions without persisting
// them.
func WithReadOnly() ConverterOption {
	return func(r *ConverterRegistry) {
		r.readOnly = true
	}
}

// NewConverterRegistry constructs a registry reading path and falling back
// to legacy.
func NewConverterRegistry(path string, validator Validator, legacy config.LegacyConversion, opts ...ConverterOption) *ConverterRegistry {
	r := &ConverterRegistry{
		path:      path,
		validator: validator,
		legacy:    legacy,
		policy:    EmptySynthesize,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "registry")
	return r
}

// Path returns the persisted document location.
func (r *ConverterRegistry) Path() string { return r.path }

// Load returns the converter definitions.
//
// A valid, non-empty persisted document is returned as-is. A missing
// document (or an empty one under EmptySynthesize) triggers synthesis from
// the legacy configuration, which is then persisted unless the registry is
// read-only. A document that exists
// but fails validation yields an empty list and an error wrapping
// ErrInvalidDocument; legacy synthesis is not attempted in that case.
func (r *ConverterRegistry) Load(ctx context.Context) ([]ConverterDefinition, error) {
	defs, found, err := r.readDocument()
	if err != nil {
		return []ConverterDefinition{}, err
	}
	if found {
		if len(defs) > 0 || r.policy == EmptyHonor {
			r.logger.Debug("converter definitions loaded",
				logging.String("path", r.path),
				logging.Int("count", len(defs)),
			)
			return defs, nil
		}
		r.logger.Info("converter document is empty; synthesizing from legacy rules",
			logging.String("path", r.path),
		)
	}

	synthesized, warnings := SynthesizeLegacy(r.legacy)
	for _, warning := range warnings {
		logging.WarnWithContext(r.logger, "legacy conversion rule skipped", "legacy_rule_skipped",
			logging.String("reason", warning),
			logging.String(logging.FieldErrorHint, "fix or remove the rule under [features.sorting.conversion]"),
		)
	}
	if len(synthesized) == 0 {
		return synthesized, nil
	}
	if r.readOnly {
		r.logger.Debug("synthesized converter definitions not persisted (read-only)",
			logging.String("path", r.path),
			logging.Int("count", len(synthesized)),
		)
		return synthesized, nil
	}
	if err := r.Save(ctx, synthesized); err != nil {
		logging.WarnWithContext(r.logger, "persist synthesized converters failed", "registry_persist_failed",
			logging.String("path", r.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "definitions will be synthesized again on next load"),
		)
	} else {
		r.logger.Info("synthesized converter definitions persisted",
			logging.String("path", r.path),
			logging.Int("count", len(synthesized)),
		)
	}
	return synthesized, nil
}

// Save writes defs to the persisted document location.
func (r *ConverterRegistry) Save(ctx context.Context, defs []ConverterDefinition) error {
	doc := converterDocument{
		Version:    DocumentVersion,
		Converters: make([]converterEntry, 0, len(defs)),
	}
	for _, def := range defs {
		doc.Converters = append(doc.Converters, entryFromConverter(def))
	}
	data, err := encodeDocument(r.path, doc)
	if err != nil {
		return fmt.Errorf("encode converters document: %w", err)
	}
	return writeDocumentAtomic(ctx, r.path, data)
}

func (r *ConverterRegistry) readDocument() ([]ConverterDefinition, bool, error) {
	doc, found, err := readGeneric(r.path)
	if err != nil || !found {
		return nil, found, err
	}
	if err := r.validator.Validate(ConvertersDocument, doc); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, r.path, err)
	}
	var typed converterDocument
	if err := decodeTyped(doc, &typed); err != nil {
		return nil, true, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, r.path, err)
	}
	defs := make([]ConverterDefinition, 0, len(typed.Converters))
	for _, entry := range typed.Converters {
		defs = append(defs, entry.definition())
	}
	return defs, true, nil
}
