package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validatePathSafety(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateLegacy(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.Validation {
	case "schema", "structural":
	default:
		return fmt.Errorf("conversion.validation must be \"schema\" or \"structural\", got %q", c.Conversion.Validation)
	}
	switch c.Conversion.EmptyDocumentPolicy {
	case "synthesize", "honor":
	default:
		return fmt.Errorf("conversion.empty_document_policy must be \"synthesize\" or \"honor\", got %q", c.Conversion.EmptyDocumentPolicy)
	}
	if c.Conversion.ProcessTimeout < 0 {
		return errors.New("conversion.process_timeout must not be negative (seconds, 0 disables)")
	}
	if err := ensurePositiveMap(map[string]int{
		"conversion.poll_interval_ms":  c.Conversion.PollIntervalMillis,
		"conversion.grace_period_ms":   c.Conversion.GracePeriodMillis,
		"conversion.copy_buffer_bytes": c.Conversion.CopyBufferBytes,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePathSafety() error {
	if c.PathSafety.RestrictToOutput && strings.TrimSpace(c.Paths.OutputDir) == "" && strings.TrimSpace(c.PathSafety.BaseDir) == "" {
		return errors.New("path_safety.restrict_to_output requires paths.output_dir")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateLegacy() error {
	legacy := c.Features.Sorting.Conversion
	for i, rule := range legacy.Rules {
		if !rule.IsEnabled() {
			continue
		}
		if rule.Tool == "" {
			return fmt.Errorf("features.sorting.conversion.rules[%d].tool must be set", i)
		}
		if rule.ToExtension == "" {
			return fmt.Errorf("features.sorting.conversion.rules[%d].to_extension must be set", i)
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
