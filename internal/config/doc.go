// Package config loads, normalizes, and validates romnorm configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the ROMNORM_CONVERTERS_PATH and
// ROMNORM_FORMATS_PATH environment overrides for the definition documents.
// The environment is consulted here and nowhere else: downstream packages
// receive explicit values derived from Config.
//
// The legacy [features.sorting.conversion] block is parsed into
// LegacyConversion so the converter registry can synthesize definitions when
// no persisted document exists yet.
package config
