package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"romnorm/internal/fileutil"
	"romnorm/internal/pathsafety"
)

func newCopyCommand(ctx *commandContext) *cobra.Command {
	var replace bool
	var quiet bool

	cmd := &cobra.Command{
		Use:   "copy <source> <destination>",
		Short: "Copy a file atomically through a temporary .part file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			src, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve source: %w", err)
			}
			dst, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}

			validator := pathsafety.New()
			if err := validator.Validate(src, "", true, false); err != nil {
				return err
			}
			if err := validator.Validate(dst, cfg.SafetyBaseDir(), false, true); err != nil {
				return err
			}

			copyCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var total int64
			if info, err := os.Stat(src); err == nil {
				total = info.Size()
			}
			opts := fileutil.CopyOptions{
				AllowReplace: replace,
				BufferSize:   cfg.Conversion.CopyBufferBytes,
			}
			errOut := cmd.ErrOrStderr()
			if !quiet && shouldColorize(errOut) {
				opts.Progress = newProgressPrinter(errOut, total)
			}

			started := time.Now()
			if err := fileutil.AtomicCopy(copyCtx, src, dst, opts); err != nil {
				return err
			}
			if opts.Progress != nil {
				fmt.Fprintln(errOut)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to %s (%s in %s)\n",
				src, dst, humanize.IBytes(uint64(total)), formatDuration(time.Since(started)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the destination if it exists")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}

// newProgressPrinter rewrites a single status line at most a few times per second.
func newProgressPrinter(w io.Writer, total int64) func(int64) {
	var last time.Time
	return func(copied int64) {
		now := time.Now()
		if copied < total && now.Sub(last) < 250*time.Millisecond {
			return
		}
		last = now
		if total > 0 {
			fmt.Fprintf(w, "\r%s / %s (%d%%)", humanize.IBytes(uint64(copied)), humanize.IBytes(uint64(total)), copied*100/total)
			return
		}
		fmt.Fprintf(w, "\r%s", humanize.IBytes(uint64(copied)))
	}
}
