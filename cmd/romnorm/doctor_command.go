package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"romnorm/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories and converter executables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			lines := renderSectionHeader("Configuration", colorize)
			path := ctx.configPath
			if !ctx.configSeen {
				path = "(defaults)"
			}
			lines = append(lines,
				renderStatusLine("Config", statusInfo, path, colorize),
				renderStatusLine("Validation", statusInfo, cfg.Conversion.Validation, colorize),
				renderStatusLine("Empty document policy", statusInfo, cfg.Conversion.EmptyDocumentPolicy, colorize),
				renderStatusLine("History", statusInfo, yesNo(cfg.History.Enabled), colorize),
			)

			reg, err := ctx.converterRegistry()
			if err != nil {
				return err
			}
			converters, loadErr := reg.Load(cmd.Context())
			if loadErr != nil {
				lines = append(lines, renderStatusLine("Converters document", statusError, loadErr.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Converters document", statusOK, fmt.Sprintf("%d definitions", len(converters)), colorize))
			}
			fmtReg, err := ctx.formatRegistry()
			if err != nil {
				return err
			}
			formats, fmtErr := fmtReg.Load(cmd.Context())
			if fmtErr != nil {
				lines = append(lines, renderStatusLine("Formats document", statusError, fmtErr.Error(), colorize))
			} else {
				lines = append(lines, renderStatusLine("Formats document", statusOK, fmt.Sprintf("%d definitions", len(formats)), colorize))
			}

			results := preflight.RunAll(cmd.Context(), cfg, converters)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				lines = append(lines, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if loadErr != nil || fmtErr != nil || !preflight.AllPassed(results) {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}
