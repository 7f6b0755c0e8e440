package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"romnorm/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "romnorm")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	wantConverters := filepath.Join(wantData, "conversion", "converters.yaml")
	if cfg.Conversion.ConvertersPath != wantConverters {
		t.Fatalf("unexpected converters path: got %q want %q", cfg.Conversion.ConvertersPath, wantConverters)
	}
	if cfg.Conversion.Validation != "schema" {
		t.Fatalf("expected schema validation by default, got %q", cfg.Conversion.Validation)
	}
	if cfg.Conversion.EmptyDocumentPolicy != "synthesize" {
		t.Fatalf("unexpected empty document policy: %q", cfg.Conversion.EmptyDocumentPolicy)
	}
	if cfg.PollInterval().Milliseconds() != 50 {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if cfg.ProcessTimeout() != 0 {
		t.Fatalf("expected no process timeout by default, got %v", cfg.ProcessTimeout())
	}
	if cfg.History.Path != filepath.Join(wantData, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathWithLegacyRules(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "romnorm.toml")
	contents := `
[paths]
data_dir = "` + filepath.Join(tempDir, "data") + `"
output_dir = "` + filepath.Join(tempDir, "out") + `"

[conversion]
validation = "Structural"
process_timeout = 600

[features.sorting.conversion]
enabled = true

[features.sorting.conversion.tools]
" chdman " = " /usr/bin/chdman "

[[features.sorting.conversion.rules]]
name = " cue_to_chd "
systems = ["psx"]
extensions = [".cue"]
to_extension = ".chd"
tool = "chdman"
args = ["createcd", "-i", "{src}", "-o", "{dst}"]

[[features.sorting.conversion.rules]]
name = "disabled"
enabled = false
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Conversion.Validation != "structural" {
		t.Fatalf("expected lowercased validation mode, got %q", cfg.Conversion.Validation)
	}
	if cfg.ProcessTimeout().Seconds() != 600 {
		t.Fatalf("unexpected timeout: %v", cfg.ProcessTimeout())
	}
	legacy := cfg.Features.Sorting.Conversion
	if !legacy.Enabled {
		t.Fatal("expected legacy conversion enabled")
	}
	if legacy.Tools["chdman"] != "/usr/bin/chdman" {
		t.Fatalf("expected trimmed tool map, got %#v", legacy.Tools)
	}
	if len(legacy.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(legacy.Rules))
	}
	if legacy.Rules[0].Name != "cue_to_chd" || !legacy.Rules[0].IsEnabled() {
		t.Fatalf("unexpected first rule: %#v", legacy.Rules[0])
	}
	if legacy.Rules[1].IsEnabled() {
		t.Fatal("expected second rule disabled")
	}
}

func TestEnvOverridesDefinitionPaths(t *testing.T) {
	tempDir := t.TempDir()
	converters := filepath.Join(tempDir, "conv.json")
	formats := filepath.Join(tempDir, "formats.json")
	t.Setenv(config.EnvConvertersPath, converters)
	t.Setenv(config.EnvFormatsPath, formats)

	type payload struct {
		Conversion struct {
			ConvertersPath string `toml:"converters_path"`
		} `toml:"conversion"`
	}
	custom := payload{}
	custom.Conversion.ConvertersPath = filepath.Join(tempDir, "from-file.yaml")
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	configPath := filepath.Join(tempDir, "romnorm.toml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Conversion.ConvertersPath != converters {
		t.Errorf("expected converters path from env, got %q", cfg.Conversion.ConvertersPath)
	}
	if cfg.Conversion.FormatsPath != formats {
		t.Errorf("expected formats path from env, got %q", cfg.Conversion.FormatsPath)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "{src}") {
		t.Fatalf("sample config missing legacy placeholder example: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Features.Sorting.Conversion.Rules) == 0 {
		t.Fatal("expected sample legacy rules")
	}
	if !strings.Contains(cfg.Paths.DataDir, "romnorm") {
		t.Fatalf("expected data dir to contain romnorm, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"validation mode", func(c *config.Config) { c.Conversion.Validation = "xml" }},
		{"empty policy", func(c *config.Config) { c.Conversion.EmptyDocumentPolicy = "ignore" }},
		{"negative timeout", func(c *config.Config) { c.Conversion.ProcessTimeout = -1 }},
		{"poll interval", func(c *config.Config) { c.Conversion.PollIntervalMillis = 0 }},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"restrict without output", func(c *config.Config) { c.PathSafety.RestrictToOutput = true }},
		{"legacy rule without tool", func(c *config.Config) {
			c.Features.Sorting.Conversion.Rules = []config.LegacyRule{{Name: "x", ToExtension: ".chd"}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestSafetyBaseDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = "/srv/out"
	if got := cfg.SafetyBaseDir(); got != "" {
		t.Fatalf("expected unrestricted base dir, got %q", got)
	}
	cfg.PathSafety.RestrictToOutput = true
	if got := cfg.SafetyBaseDir(); got != "/srv/out" {
		t.Fatalf("expected output dir as base, got %q", got)
	}
	cfg.PathSafety.BaseDir = "/srv"
	if got := cfg.SafetyBaseDir(); got != "/srv" {
		t.Fatalf("expected explicit base dir, got %q", got)
	}
}
