package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	TempDir   string `toml:"temp_dir"`
}

// Conversion controls definition documents and converter process handling.
type Conversion struct {
	ConvertersPath      string `toml:"converters_path"`
	FormatsPath         string `toml:"formats_path"`
	Validation          string `toml:"validation"`
	EmptyDocumentPolicy string `toml:"empty_document_policy"`
	ProcessTimeout      int    `toml:"process_timeout"`
	PollIntervalMillis  int    `toml:"poll_interval_ms"`
	GracePeriodMillis   int    `toml:"grace_period_ms"`
	CopyBufferBytes     int    `toml:"copy_buffer_bytes"`
}

// PathSafety restricts where conversions may read and write.
type PathSafety struct {
	BaseDir          string `toml:"base_dir"`
	RestrictToOutput bool   `toml:"restrict_to_output"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics contains configuration for the Prometheus textfile export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LegacyRule is one rule of the pre-registry conversion configuration.
type LegacyRule struct {
	Name        string   `toml:"name"`
	Enabled     *bool    `toml:"enabled"`
	Systems     []string `toml:"systems"`
	Extensions  []string `toml:"extensions"`
	ToExtension string   `toml:"to_extension"`
	Tool        string   `toml:"tool"`
	Args        []string `toml:"args"`
}

// IsEnabled reports whether the rule is active. Rules default to enabled.
func (r LegacyRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// LegacyConversion mirrors features.sorting.conversion.
type LegacyConversion struct {
	Enabled bool              `toml:"enabled"`
	Tools   map[string]string `toml:"tools"`
	Rules   []LegacyRule      `toml:"rules"`
}

// Sorting groups the legacy sorting feature settings.
type Sorting struct {
	Conversion LegacyConversion `toml:"conversion"`
}

// Features groups optional feature blocks carried over from older configs.
type Features struct {
	Sorting Sorting `toml:"sorting"`
}

// Config encapsulates all configuration values for romnorm.
//
// Configuration sections by subsystem:
//   - Paths: data, log, output and scratch directories
//   - Conversion: definition documents and converter process tuning
//   - PathSafety: read/write restrictions applied before conversions
//   - Logging: log format and level
//   - Metrics: Prometheus textfile export
//   - History: SQLite run history
//   - Features: legacy conversion rules used to seed the converter registry
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	PathSafety PathSafety `toml:"path_safety"`
	Logging    Logging    `toml:"logging"`
	Metrics    Metrics    `toml:"metrics"`
	History    History    `toml:"history"`
	Features   Features   `toml:"features"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/romnorm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("romnorm.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories. The output
// directory is created on a best-effort basis so planning still works when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// ProcessTimeout returns the per-conversion timeout; zero disables it.
func (c *Config) ProcessTimeout() time.Duration {
	return time.Duration(c.Conversion.ProcessTimeout) * time.Second
}

// PollInterval returns the converter process poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Conversion.PollIntervalMillis) * time.Millisecond
}

// GracePeriod returns how long a terminated converter may take to exit before it is killed.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Conversion.GracePeriodMillis) * time.Millisecond
}

// LockPath returns the batch lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "romnorm.lock")
}

// SafetyBaseDir returns the directory every conversion output must stay
// within, or "" when outputs are unrestricted.
func (c *Config) SafetyBaseDir() string {
	if strings.TrimSpace(c.PathSafety.BaseDir) != "" {
		return c.PathSafety.BaseDir
	}
	if c.PathSafety.RestrictToOutput {
		return c.Paths.OutputDir
	}
	return ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
