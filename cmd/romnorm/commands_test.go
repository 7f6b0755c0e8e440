package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"romnorm/internal/normalize"
	"romnorm/internal/testsupport"
)

func TestClassifyJSON(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "Game Folder")
	if err := os.MkdirAll(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"classify", "--json", "a.CUE", "b.7z", "c.iso", "d.sfc", folder}, "")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var rows []classifyRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := []string{"disc_track_set", "archive_set", "disc_image", "raw_rom", "game_folder_set"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, row := range rows {
		if string(row.Kind) != want[i] {
			t.Errorf("%s: kind = %s, want %s", row.Path, row.Kind, want[i])
		}
	}
}

func TestValidateReportsMissingTrack(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	cue := filepath.Join(dir, "game.cue")
	testsupport.WriteText(t, cue, "FILE \"game (Track 1).bin\" BINARY\n  TRACK 01 MODE2/2352\n")

	out, _, err := runCLI(t, []string{"validate", cue}, env.configPath)
	if err == nil {
		t.Fatal("expected validate to fail for a missing track")
	}
	requireContains(t, out, "missing-track-file")

	testsupport.WriteFile(t, filepath.Join(dir, "game (Track 1).bin"), 2048)
	out, _, err = runCLI(t, []string{"validate", cue}, env.configPath)
	if err != nil {
		t.Fatalf("validate after adding track: %v\n%s", err, out)
	}
}

func TestPlanJSONSelectsLegacyConverter(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(t.TempDir(), "game.iso")
	testsupport.WriteFile(t, input, 4096)

	out, _, err := runCLI(t, []string{"plan", "--json", "--platform", "psx", input}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	var items []normalize.Item
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Action != normalize.ActionConvert || item.ConverterID != "iso_to_cso" {
		t.Fatalf("unexpected item %+v", item)
	}
	if want := filepath.Join(env.cfg.Paths.OutputDir, "game.cso"); item.OutputPath != want {
		t.Fatalf("output = %s, want %s", item.OutputPath, want)
	}
	if len(item.Args) != 2 || item.Args[0] != input || item.Args[1] != item.OutputPath {
		t.Fatalf("args = %v", item.Args)
	}
	if _, err := os.Stat(env.cfg.Conversion.ConvertersPath); !os.IsNotExist(err) {
		t.Fatalf("plan must not persist synthesized converters, stat err = %v", err)
	}

	out, _, err = runCLI(t, []string{"plan", "--platform", "snes", input}, env.configPath)
	if err != nil {
		t.Fatalf("plan other platform: %v", err)
	}
	requireContains(t, out, "0 conversions planned")
}

func TestRunConvertsAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	inputs := t.TempDir()
	iso := filepath.Join(inputs, "game.iso")
	rom := filepath.Join(inputs, "other.sfc")
	testsupport.WriteFile(t, iso, 8192)
	testsupport.WriteFile(t, rom, 512)

	out, _, err := runCLI(t, []string{"run", "--json", "--platform", "psx", iso, rom}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	var report normalize.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Processed != 2 || report.Succeeded != 2 || report.Failed != 0 || report.Cancelled {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Results[1].Status != normalize.ResultSkipped {
		t.Fatalf("second result = %+v", report.Results[1])
	}
	if _, err := os.Stat(env.cfg.Conversion.ConvertersPath); err != nil {
		t.Fatalf("expected run to persist synthesized converters: %v", err)
	}
	converted := filepath.Join(env.cfg.Paths.OutputDir, "game.cso")
	info, err := os.Stat(converted)
	if err != nil {
		t.Fatalf("expected converted output: %v", err)
	}
	if info.Size() != 8192 {
		t.Fatalf("converted size = %d", info.Size())
	}

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].RunID != report.RunID {
		t.Fatalf("runs = %+v, want %s", runs, report.RunID)
	}

	out, _, err = runCLI(t, []string{"history", report.RunID}, env.configPath)
	if err != nil {
		t.Fatalf("history run: %v", err)
	}
	requireContains(t, out, "game.iso")
	requireContains(t, out, "succeeded")
}

func TestRunDryRunLeavesFilesystemAlone(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	iso := filepath.Join(t.TempDir(), "game.iso")
	testsupport.WriteFile(t, iso, 1024)

	out, _, err := runCLI(t, []string{"run", "--dry-run", "--platform", "psx", iso}, env.configPath)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, "1 processed, 1 succeeded, 0 failed")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "game.cso")); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create output, stat err = %v", err)
	}
	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected history to report it is disabled")
	}
}

func TestRunFailureIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.toolPath, []byte("#!/bin/sh\necho 'bad input' >&2\nexit 2\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	iso := filepath.Join(t.TempDir(), "game.iso")
	testsupport.WriteFile(t, iso, 1024)

	out, _, err := runCLI(t, []string{"run", "--platform", "psx", iso}, env.configPath)
	if err == nil {
		t.Fatal("expected run with a failed item to return an error")
	}
	requireContains(t, err.Error(), "1 of 1 items failed")
	requireContains(t, out, "bad input")
}

func TestRunRefusesWhenLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	lock := flock.New(env.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("take lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	iso := filepath.Join(t.TempDir(), "game.iso")
	testsupport.WriteFile(t, iso, 1024)
	_, _, err = runCLI(t, []string{"run", "--platform", "psx", iso}, env.configPath)
	if !errors.Is(err, errRunLocked) {
		t.Fatalf("expected errRunLocked, got %v", err)
	}
}

func TestConvertersListAndExport(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"converters", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("converters list: %v", err)
	}
	requireContains(t, out, "iso_to_cso")
	requireContains(t, out, env.toolPath)

	target := filepath.Join(t.TempDir(), "exported.json")
	out, _, err = runCLI(t, []string{"converters", "export", "--output", target}, env.configPath)
	if err != nil {
		t.Fatalf("converters export: %v", err)
	}
	requireContains(t, out, "Exported 1 converters")
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if doc["version"] != "1.0" {
		t.Fatalf("version = %v", doc["version"])
	}
}

func TestConvertersListFailsClosedOnInvalidDocument(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.Conversion.ConvertersPath, "version: \"1.0\"\nconverters: nope\n")

	if _, _, err := runCLI(t, []string{"converters", "list"}, env.configPath); err == nil {
		t.Fatal("expected invalid converters document to fail")
	}
}

func TestFormatsList(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"formats", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("formats list: %v", err)
	}
	requireContains(t, out, "No platform formats defined")

	testsupport.WriteText(t, env.cfg.Conversion.FormatsPath, `version: "1.0"
formats:
  - platform_id: psx
    format_id: psx_chd
    input_kinds: [disc_track_set]
    preferred_outputs: [".chd", ".pbp"]
`)
	out, _, err = runCLI(t, []string{"formats", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("formats list: %v", err)
	}
	requireContains(t, out, "psx_chd")
	requireContains(t, out, ".chd > .pbp")
}

func TestDoctor(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Converter iso_to_cso")
	requireContains(t, out, "[OK]")

	if err := os.Remove(env.toolPath); err != nil {
		t.Fatal(err)
	}
	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err == nil {
		t.Fatalf("expected doctor to fail without the converter\n%s", out)
	}
	requireContains(t, out, "[ERROR]")
}

func TestCopyCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(t.TempDir(), "game.sfc")
	testsupport.WriteFile(t, src, 3*1024*1024)
	dst := filepath.Join(env.cfg.Paths.OutputDir, "sub", "game.sfc")

	out, _, err := runCLI(t, []string{"copy", src, dst}, env.configPath)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	requireContains(t, out, "3.0 MiB")
	if info, err := os.Stat(dst); err != nil || info.Size() != 3*1024*1024 {
		t.Fatalf("destination stat = %v, %v", info, err)
	}

	if _, _, err := runCLI(t, []string{"copy", src, dst}, env.configPath); err == nil {
		t.Fatal("expected copy to refuse an existing destination")
	}
	if _, _, err := runCLI(t, []string{"copy", "--replace", src, dst}, env.configPath); err != nil {
		t.Fatalf("copy --replace: %v", err)
	}
}

func TestLogsFiltersByRun(t *testing.T) {
	env := setupCLITestEnv(t)
	logPath := filepath.Join(env.cfg.Paths.LogDir, "romnorm.log")
	testsupport.WriteText(t, logPath, `{"level":"INFO","run_id":"run-a","msg":"first"}
{"level":"INFO","run_id":"run-b","msg":"second"}
{"level":"INFO","run_id":"run-a","msg":"third"}
`)

	out, _, err := runCLI(t, []string{"logs", "--run", "run-a"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "first")
	requireContains(t, out, "third")
	if strings.Contains(out, "second") {
		t.Fatalf("unexpected line from another run:\n%s", out)
	}
}
