package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"romnorm/internal/config"
	"romnorm/internal/history"
	"romnorm/internal/logging"
	"romnorm/internal/metrics"
	"romnorm/internal/normalize"
	"romnorm/internal/pathsafety"
	"romnorm/internal/preflight"
	"romnorm/internal/procrun"
)

// errRunLocked reports that another run holds the batch lock.
var errRunLocked = errors.New("another romnorm run is in progress")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts planOptions
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run <path>...",
		Short: "Plan and execute conversions for the given inputs",
		Long: "Plan and execute conversions for the given inputs.\n\n" +
			"Items run one at a time in argument order. A failed item never stops the batch;\n" +
			"Ctrl-C stops after terminating the converter in flight.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			if cfg.Paths.OutputDir != "" && opts.outputDir == "" {
				if check := preflight.CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir); !check.Passed {
					return fmt.Errorf("output directory not usable: %s", check.Detail)
				}
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("%w (lock held at %s)", errRunLocked, cfg.LockPath())
			}
			defer func() {
				_ = lock.Unlock()
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runID := uuid.NewString()
			runCtx = logging.WithRunID(runCtx, runID)

			plan, err := ctx.buildPlan(runCtx, args, opts)
			if err != nil {
				return err
			}

			runner := procrun.New(logger)
			runner.PollInterval = cfg.PollInterval()
			runner.GracePeriod = cfg.GracePeriod()
			recorder := metrics.NewRecorder()
			executor := &normalize.Executor{
				Runner:   runner,
				Paths:    pathsafety.New(),
				Observer: recorder,
				Logger:   logger,
				BaseDir:  cfg.SafetyBaseDir(),
				Timeout:  cfg.ProcessTimeout(),
			}
			report := executor.Execute(runCtx, plan, normalize.ExecuteOptions{DryRun: dryRun, RunID: runID})

			recorder.ObserveReport(report)
			if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
				logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
					logging.Error(err),
					logging.String("path", cfg.Metrics.TextfilePath),
				)
			}
			// Recording uses a fresh context so a cancelled run is still logged.
			if err := recordHistory(context.WithoutCancel(cmd.Context()), cfg, report, dryRun); err != nil {
				logging.WarnWithContext(logger, "run history not recorded", "history_write_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in `romnorm history`"),
				)
			}

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				writeReport(cmd.OutOrStdout(), report)
			}

			switch {
			case report.Cancelled:
				fmt.Fprintln(cmd.ErrOrStderr(), "Run cancelled")
				return context.Canceled
			case report.Failed > 0:
				return fmt.Errorf("%d of %d items failed", report.Failed, report.Processed)
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan and report without running converters")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run report as JSON")
	return cmd
}

func recordHistory(ctx context.Context, cfg *config.Config, report normalize.Report, dryRun bool) error {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.RecordReport(ctx, report, dryRun)
}

func writeReport(out io.Writer, report normalize.Report) {
	rows := make([][]string, 0, len(report.Results))
	for i, result := range report.Results {
		detail := result.OutputPath
		if result.Error != "" {
			detail = result.Error
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			result.InputPath,
			string(result.Status),
			dash(detail),
			formatDuration(result.Duration),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Input", "Status", "Output / Error", "Took"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
		))
	}
	fmt.Fprintf(out, "Run %s: %d processed, %d succeeded, %d failed in %s\n",
		report.RunID,
		report.Processed,
		report.Succeeded,
		report.Failed,
		formatDuration(report.Duration()),
	)
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return "<1s"
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
