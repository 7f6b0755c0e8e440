package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeConversion(); err != nil {
		return err
	}
	if err := c.normalizePathSafety(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLegacy()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() error {
	if value, ok := os.LookupEnv(EnvConvertersPath); ok && strings.TrimSpace(value) != "" {
		c.Conversion.ConvertersPath = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvFormatsPath); ok && strings.TrimSpace(value) != "" {
		c.Conversion.FormatsPath = strings.TrimSpace(value)
	}

	var err error
	if strings.TrimSpace(c.Conversion.ConvertersPath) == "" {
		c.Conversion.ConvertersPath = filepath.Join(c.Paths.DataDir, defaultConvertersFile)
	}
	if c.Conversion.ConvertersPath, err = expandPath(c.Conversion.ConvertersPath); err != nil {
		return fmt.Errorf("conversion.converters_path: %w", err)
	}
	if strings.TrimSpace(c.Conversion.FormatsPath) == "" {
		c.Conversion.FormatsPath = filepath.Join(c.Paths.DataDir, defaultFormatsFile)
	}
	if c.Conversion.FormatsPath, err = expandPath(c.Conversion.FormatsPath); err != nil {
		return fmt.Errorf("conversion.formats_path: %w", err)
	}

	c.Conversion.Validation = strings.ToLower(strings.TrimSpace(c.Conversion.Validation))
	if c.Conversion.Validation == "" {
		c.Conversion.Validation = defaultValidation
	}
	c.Conversion.EmptyDocumentPolicy = strings.ToLower(strings.TrimSpace(c.Conversion.EmptyDocumentPolicy))
	if c.Conversion.EmptyDocumentPolicy == "" {
		c.Conversion.EmptyDocumentPolicy = defaultEmptyDocumentPolicy
	}
	if c.Conversion.PollIntervalMillis == 0 {
		c.Conversion.PollIntervalMillis = defaultPollIntervalMillis
	}
	if c.Conversion.GracePeriodMillis == 0 {
		c.Conversion.GracePeriodMillis = defaultGracePeriodMillis
	}
	if c.Conversion.CopyBufferBytes == 0 {
		c.Conversion.CopyBufferBytes = defaultCopyBufferBytes
	}
	return nil
}

func (c *Config) normalizePathSafety() error {
	var err error
	if c.PathSafety.BaseDir, err = expandPath(strings.TrimSpace(c.PathSafety.BaseDir)); err != nil {
		return fmt.Errorf("path_safety.base_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.DataDir, defaultHistoryFile)
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLegacy() {
	legacy := &c.Features.Sorting.Conversion
	if len(legacy.Tools) > 0 {
		tools := make(map[string]string, len(legacy.Tools))
		for key, path := range legacy.Tools {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			tools[key] = strings.TrimSpace(path)
		}
		legacy.Tools = tools
	}
	for i := range legacy.Rules {
		rule := &legacy.Rules[i]
		rule.Name = strings.TrimSpace(rule.Name)
		rule.Tool = strings.TrimSpace(rule.Tool)
		rule.ToExtension = strings.TrimSpace(rule.ToExtension)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
}
