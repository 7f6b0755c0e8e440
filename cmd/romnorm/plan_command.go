package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"romnorm/internal/normalize"
	"romnorm/internal/registry"
)

type planOptions struct {
	platformID string
	outputDir  string
	readOnly   bool
}

func (o *planOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.platformID, "platform", "p", "", "Platform id applied to every input")
	cmd.Flags().StringVarP(&o.outputDir, "output", "o", "", "Output directory (defaults to paths.output_dir, else beside each input)")
}

// buildPlan inspects args and runs the planner against the loaded registries.
func (c *commandContext) buildPlan(ctx context.Context, args []string, opts planOptions) (normalize.Plan, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return normalize.Plan{}, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return normalize.Plan{}, err
	}
	var regOpts []registry.ConverterOption
	if opts.readOnly {
		regOpts = append(regOpts, registry.WithReadOnly())
	}
	regs, err := c.loadRegistries(ctx, regOpts...)
	if err != nil {
		return normalize.Plan{}, err
	}
	items, err := inspectInputs(args, opts.platformID, regs.formats)
	if err != nil {
		return normalize.Plan{}, err
	}
	outputRoot := opts.outputDir
	if outputRoot == "" {
		outputRoot = cfg.Paths.OutputDir
	}
	planner := normalize.Planner{
		Converters: regs.converters,
		Formats:    regs.formats,
		OutputRoot: outputRoot,
		TempRoot:   cfg.Paths.TempDir,
		Logger:     logger,
	}
	return planner.Build(ctx, items), nil
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	opts := planOptions{readOnly: true}
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "plan <path>...",
		Short: "Show what a run would do without writing any file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ctx.buildPlan(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, plan.Items())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderPlan(plan))
			fmt.Fprintf(out, "%d inputs, %d conversions planned\n", plan.Len(), plan.ConvertCount())
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderPlan(plan normalize.Plan) string {
	items := plan.Items()
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		detail := item.OutputPath
		if item.Status == normalize.StatusFailed {
			detail = issueSummary(item)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.InputPath,
			string(item.Status),
			dash(item.ConverterID),
			dash(detail),
		})
	}
	return renderTable(
		[]string{"#", "Input", "Status", "Converter", "Output / Issues"},
		rows,
		[]columnAlignment{alignRight},
	)
}
