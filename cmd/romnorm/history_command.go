package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"romnorm/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past runs, or the results of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("run history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cmd.Context(), cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				results, err := store.Results(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, results)
				}
				rows := make([][]string, 0, len(results))
				for i, result := range results {
					detail := result.OutputPath
					if result.Error != "" {
						detail = result.Error
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						result.InputPath,
						string(result.Status),
						dash(result.ConverterID),
						dash(detail),
						formatDuration(result.Duration),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Input", "Status", "Converter", "Output / Error", "Took"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.RunID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					yesNo(run.DryRun),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
					yesNo(run.Cancelled),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Dry Run", "Processed", "Succeeded", "Failed", "Cancelled"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
