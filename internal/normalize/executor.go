package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"romnorm/internal/logging"
	"romnorm/internal/procrun"
)

// ProcessRunner runs one converter process.
type ProcessRunner interface {
	Run(ctx context.Context, cmd procrun.Command, timeout time.Duration) (procrun.Outcome, error)
}

// PathValidator vets a path before it is read or written.
type PathValidator interface {
	Validate(path, baseDir string, allowRead, allowWrite bool) error
}

// Observer receives every recorded result.
type Observer interface {
	ObserveResult(result ResultItem)
}

// ExecuteOptions tunes one Execute call.
type ExecuteOptions struct {
	DryRun bool
	// RunID labels the report; a random UUID is used when empty.
	RunID string
}

// Executor runs plans. The zero value is not usable; Runner is required for
// non-dry runs.
type Executor struct {
	Runner   ProcessRunner
	Paths    PathValidator
	Observer Observer
	Logger   *slog.Logger
	// BaseDir confines output paths when set.
	BaseDir string
	// Timeout bounds each converter process; zero disables it.
	Timeout time.Duration
	// LookPath resolves tool paths; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Execute processes the plan strictly in order and returns the report. It
// never returns early on a per-item failure. A cancelled ctx stops the batch
// before the next item; the item in flight is recorded as cancelled. A plan
// whose build was cancelled is not executed.
func (e *Executor) Execute(ctx context.Context, plan Plan, opts ExecuteOptions) Report {
	runID := strings.TrimSpace(opts.RunID)
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "executor"))

	report := newReport(runID, e.now())

	if plan.Cancelled() {
		logger.Warn("plan was cancelled during build; nothing executed",
			logging.String(logging.FieldEventType, "plan_cancelled"))
		report.Cancelled = true
		report.FinishedAt = e.now()
		return report
	}

	logger.Info("normalization run started",
		logging.Int("items", plan.Len()),
		logging.Int("conversions", plan.ConvertCount()),
		logging.Bool("dry_run", opts.DryRun),
	)

	for i := 0; i < plan.Len(); i++ {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		item := plan.Item(i)
		itemCtx := logging.WithItemIndex(ctx, i+1)
		result := e.executeItem(itemCtx, item, opts.DryRun)
		report.record(result)
		if e.Observer != nil {
			e.Observer.ObserveResult(result)
		}
		if result.Status == ResultCancelled {
			break
		}
	}

	report.FinishedAt = e.now()
	logger.Info("normalization run finished",
		logging.Int("processed", report.Processed),
		logging.Int("succeeded", report.Succeeded),
		logging.Int("failed", report.Failed),
		logging.Bool("cancelled", report.Cancelled),
		logging.Duration("duration", report.Duration()),
	)
	return report
}

func (e *Executor) executeItem(ctx context.Context, item Item, dryRun bool) ResultItem {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(e.Logger, "executor")).With(
		logging.Args(logging.String(logging.FieldInputPath, item.InputPath))...,
	)
	result := ResultItem{
		InputPath:   item.InputPath,
		OutputPath:  item.OutputPath,
		ConverterID: item.ConverterID,
	}

	if !item.IsConvert() {
		result.Status = ResultSkipped
		logger.Debug("item skipped", logging.String("status", string(item.Status)))
		return result
	}
	if dryRun {
		result.Status = ResultDryRun
		logger.Info("dry run: conversion not started",
			logging.String(logging.FieldConverterID, item.ConverterID),
			logging.String("output_path", item.OutputPath),
		)
		return result
	}

	start := e.now()
	fail := func(err error) ResultItem {
		result.Status = ResultFailed
		result.Error = err.Error()
		result.Duration = e.now().Sub(start)
		logging.WarnWithContext(logger, "conversion failed", "conversion_failed",
			logging.String(logging.FieldConverterID, item.ConverterID),
			logging.String("error_message", result.Error),
			logging.String(logging.FieldImpact, "item left unconverted; batch continues"),
		)
		return result
	}

	if e.Paths != nil {
		if err := e.Paths.Validate(item.InputPath, "", true, false); err != nil {
			return fail(err)
		}
		if err := e.Paths.Validate(item.OutputPath, e.BaseDir, false, true); err != nil {
			return fail(err)
		}
		if item.TempDir != "" {
			if err := e.Paths.Validate(item.TempDir, "", false, true); err != nil {
				return fail(err)
			}
		}
	}

	if e.Runner == nil {
		return fail(errors.New("no process runner configured"))
	}
	tool, err := e.lookPath(item.ToolPath)
	if err != nil {
		return fail(fmt.Errorf("converter executable %q unavailable: %w", item.ToolPath, err))
	}
	if err := os.MkdirAll(filepath.Dir(item.OutputPath), 0o755); err != nil {
		return fail(fmt.Errorf("create output directory: %w", err))
	}
	if item.TempDir != "" {
		if err := os.MkdirAll(item.TempDir, 0o755); err != nil {
			return fail(fmt.Errorf("create temp directory: %w", err))
		}
		defer func() {
			_ = os.RemoveAll(item.TempDir)
		}()
	}

	cmd := procrun.Command{Path: tool, Args: item.Args, Dir: filepath.Dir(item.InputPath)}
	logger.Info("conversion started",
		logging.String(logging.FieldConverterID, item.ConverterID),
		logging.String("command", cmd.String()),
	)
	outcome, err := e.Runner.Run(ctx, cmd, e.Timeout)
	if err != nil {
		return fail(fmt.Errorf("launch converter: %w", err))
	}
	result.Duration = e.now().Sub(start)

	switch {
	case outcome.Cancelled:
		result.Status = ResultCancelled
		result.Error = "cancelled"
		logger.Info("conversion cancelled; stopping batch",
			logging.String(logging.FieldConverterID, item.ConverterID))
		return result
	case outcome.TimedOut:
		return fail(fmt.Errorf("converter timed out after %s", e.Timeout))
	case !outcome.Success:
		msg := fmt.Sprintf("converter exited with code %d", outcome.ExitCode)
		if tail := strings.TrimSpace(outcome.Stderr); tail != "" {
			msg += ": " + lastLine(tail)
		}
		return fail(errors.New(msg))
	}

	info, err := os.Stat(item.OutputPath)
	if err != nil {
		return fail(errors.New("output missing after conversion"))
	}

	result.Status = ResultSucceeded
	logger.Info("conversion succeeded",
		logging.String(logging.FieldConverterID, item.ConverterID),
		logging.String("output_path", item.OutputPath),
		logging.Int64("output_bytes", info.Size()),
		logging.Duration("duration", result.Duration),
	)
	return result
}

func (e *Executor) lookPath(tool string) (string, error) {
	if strings.TrimSpace(tool) == "" {
		return "", errors.New("empty tool path")
	}
	if e.LookPath != nil {
		return e.LookPath(tool)
	}
	return exec.LookPath(tool)
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func lastLine(s string) string {
	if idx := strings.LastIndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[idx+1:])
	}
	return s
}
