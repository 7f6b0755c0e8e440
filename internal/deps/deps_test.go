package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"romnorm/internal/registry"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Resolved != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("blank command = %#v", results[2])
	}
}

func TestCheckBinariesWithResolver(t *testing.T) {
	lookPath := func(name string) (string, error) {
		if name == "chdman" {
			return "/opt/bin/chdman", nil
		}
		return "", errors.New("nope")
	}
	results := CheckBinariesWith(lookPath, []Requirement{{Name: "a", Command: "chdman"}, {Name: "b", Command: "maxcso"}})
	if !results[0].Available || results[0].Resolved != "/opt/bin/chdman" {
		t.Fatalf("first = %#v", results[0])
	}
	if results[1].Available {
		t.Fatalf("second = %#v", results[1])
	}
}

func TestConverterRequirements(t *testing.T) {
	defs := []registry.ConverterDefinition{
		{ConverterID: "cue_to_chd", ExePath: "chdman", Enabled: true, Extensions: []string{".cue"}, OutputExtension: ".chd"},
		{ConverterID: "iso_to_cso", ExePath: "maxcso", Enabled: false, OutputExtension: ".cso"},
	}
	reqs := ConverterRequirements(defs)
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Name != "cue_to_chd" || reqs[0].Command != "chdman" || reqs[0].Optional {
		t.Fatalf("first = %#v", reqs[0])
	}
	if !strings.Contains(reqs[0].Description, ".cue") || !strings.Contains(reqs[0].Description, ".chd") {
		t.Fatalf("description = %q", reqs[0].Description)
	}
	if !reqs[1].Optional || !strings.Contains(reqs[1].Description, "disabled") || !strings.Contains(reqs[1].Description, "any input") {
		t.Fatalf("second = %#v", reqs[1])
	}
}
