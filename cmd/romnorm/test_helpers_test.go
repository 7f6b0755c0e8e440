package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"romnorm/internal/config"
	"romnorm/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	toolPath   string
}

// setupCLITestEnv writes a config whose single legacy rule converts .iso to
// .cso for psx with a shell script that copies its input.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvConvertersPath, "")
	t.Setenv(config.EnvFormatsPath, "")

	toolDir := t.TempDir()
	tool := testsupport.WriteConverterScript(t, toolDir, "fake-maxcso", `cp "$1" "$2"`)
	rule := config.LegacyRule{
		Name:        "iso_to_cso",
		Systems:     []string{"psx"},
		Extensions:  []string{".iso"},
		ToExtension: ".cso",
		Tool:        "fakecso",
		Args:        []string{"{src}", "{dst}"},
	}
	opts = append([]testsupport.ConfigOption{testsupport.WithLegacyRule(rule, tool)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)

	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		toolPath:   tool,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
