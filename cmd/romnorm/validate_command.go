package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"romnorm/internal/normalize"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var platformID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check track sets and folder sets for missing files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtReg, err := ctx.formatRegistry()
			if err != nil {
				return err
			}
			formats, err := fmtReg.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load formats: %w", err)
			}
			items, err := inspectInputs(args, platformID, formats)
			if err != nil {
				return err
			}

			failed := 0
			for _, item := range items {
				if item.Status == normalize.StatusFailed {
					failed++
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, items); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						item.InputPath,
						item.InputKind.String(),
						string(item.Status),
						dash(issueSummary(item)),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Input", "Kind", "Status", "Issues"}, rows, nil))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed validation", failed, len(items))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&platformID, "platform", "p", "", "Platform id used for folder-set manifest checks")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
