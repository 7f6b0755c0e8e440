package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"romnorm/internal/config"
	"romnorm/internal/deps"
	"romnorm/internal/registry"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckConverters(t *testing.T) {
	results := CheckConverters([]deps.Status{
		{Name: "a", Available: true, Resolved: "/bin/a"},
		{Name: "b", Optional: true, Detail: `binary "b" not found`},
		{Name: "c", Detail: `binary "c" not found`},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Passed || results[0].Detail != "/bin/a" || results[0].Name != "Converter a" {
		t.Fatalf("first = %+v", results[0])
	}
	if !results[1].Passed || !strings.HasPrefix(results[1].Detail, "disabled") {
		t.Fatalf("second = %+v", results[1])
	}
	if results[2].Passed {
		t.Fatalf("third = %+v", results[2])
	}
	if AllPassed(results) {
		t.Fatal("expected AllPassed to be false")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_DirectoriesAndConverters(t *testing.T) {
	binDir := t.TempDir()
	tool := filepath.Join(binDir, "fake-chdman")
	if err := os.WriteFile(tool, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.TempDir = ""

	converters := []registry.ConverterDefinition{
		{ConverterID: "cue_to_chd", ExePath: tool, Enabled: true},
	}
	results := RunAll(context.Background(), &cfg, converters)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}

func TestRunAll_MissingConverterFails(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.OutputDir = ""
	cfg.Paths.TempDir = ""

	converters := []registry.ConverterDefinition{
		{ConverterID: "iso_to_cso", ExePath: "clearly-not-present-binary", Enabled: true},
	}
	results := RunAll(context.Background(), &cfg, converters)
	if AllPassed(results) {
		t.Fatalf("expected converter check to fail: %+v", results)
	}
}
