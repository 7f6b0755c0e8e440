package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"romnorm/internal/inputkind"
)

type classifyRow struct {
	Path string         `json:"path"`
	Kind inputkind.Kind `json:"kind"`
}

func newClassifyCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "classify <path>...",
		Short:       "Report the input kind of each path",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]classifyRow, 0, len(args))
			for _, path := range args {
				rows = append(rows, classifyRow{Path: path, Kind: inputkind.Classify(path)})
			}
			if jsonOutput {
				return writeJSON(cmd, rows)
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{row.Path, row.Kind.String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Path", "Kind"}, table, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
