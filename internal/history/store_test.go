package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"romnorm/internal/normalize"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(runID string, started time.Time) normalize.Report {
	return normalize.Report{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Processed:  3,
		Succeeded:  2,
		Failed:     1,
		Errors:     []string{"/roms/b.iso: converter exited with code 1"},
		Results: []normalize.ResultItem{
			{InputPath: "/roms/a.iso", Status: normalize.ResultSucceeded, OutputPath: "/out/a.chd", ConverterID: "iso_to_chd", Duration: 80 * time.Second},
			{InputPath: "/roms/b.iso", Status: normalize.ResultFailed, OutputPath: "/out/b.chd", ConverterID: "iso_to_chd", Error: "converter exited with code 1"},
			{InputPath: "/roms/c.sfc", Status: normalize.ResultSkipped},
		},
	}
}

func TestRecordAndReadBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := store.RecordReport(ctx, sampleReport("run-a", started), false); err != nil {
		t.Fatalf("RecordReport: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	run := runs[0]
	if run.RunID != "run-a" || run.Processed != 3 || run.Failed != 1 || run.DryRun || run.Cancelled {
		t.Fatalf("unexpected run %+v", run)
	}
	if !run.StartedAt.Equal(started) || !run.FinishedAt.Equal(started.Add(90*time.Second)) {
		t.Fatalf("times = %s / %s", run.StartedAt, run.FinishedAt)
	}

	results, err := store.Results(ctx, "run-a")
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Duration != 80*time.Second || results[0].ConverterID != "iso_to_chd" {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].Error == "" || results[2].Status != normalize.ResultSkipped || results[2].OutputPath != "" {
		t.Fatalf("results = %+v", results)
	}
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		report := sampleReport(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.RecordReport(ctx, report, i == 2); err != nil {
			t.Fatalf("RecordReport %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "new" || runs[1].RunID != "mid" {
		t.Fatalf("runs = %+v", runs)
	}
	if !runs[0].DryRun {
		t.Fatal("expected newest run flagged as dry run")
	}
}

func TestResultsUnknownRun(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Results(context.Background(), "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRecordDuplicateRunFails(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	report := sampleReport("dup", time.Now())
	if err := store.RecordReport(ctx, report, false); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := store.RecordReport(ctx, report, false); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = store.Close()
	}
}
