// Package registry loads the declarative converter and platform-format
// definitions that drive conversion planning.
//
// Both registries read a persisted YAML or JSON document and validate it
// through a Validator chosen at composition time (JSON Schema or structural
// checks). A document that is present but invalid yields an empty registry
// plus an error wrapping ErrInvalidDocument; callers log it and continue
// with nothing to match against. The converter registry additionally
// synthesizes definitions from the legacy features.sorting.conversion block
// when no document exists yet and persists the result for later loads.
package registry
