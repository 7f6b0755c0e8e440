package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type formatView struct {
	PlatformID        string   `json:"platform_id"`
	FormatID          string   `json:"format_id"`
	InputKinds        []string `json:"input_kinds"`
	RequiredManifests []string `json:"required_manifests"`
	PreferredOutputs  []string `json:"preferred_outputs"`
}

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "Inspect the platform format registry",
	}

	var jsonOutput bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List platform format definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.formatRegistry()
			if err != nil {
				return err
			}
			defs, err := reg.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load formats: %w", err)
			}
			views := make([]formatView, 0, len(defs))
			for _, def := range defs {
				views = append(views, formatView{
					PlatformID:        def.PlatformID,
					FormatID:          def.FormatID,
					InputKinds:        kindStrings(def.InputKinds),
					RequiredManifests: def.RequiredManifests,
					PreferredOutputs:  def.PreferredOutputs,
				})
			}
			if jsonOutput {
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintf(out, "No platform formats defined (%s)\n", reg.Path())
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, view := range views {
				rows = append(rows, []string{
					view.PlatformID,
					view.FormatID,
					dash(strings.Join(view.InputKinds, ", ")),
					dash(strings.Join(view.RequiredManifests, ", ")),
					dash(strings.Join(view.PreferredOutputs, " > ")),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Platform", "Format", "Kinds", "Manifests", "Preferred Outputs"},
				rows,
				nil,
			))
			return nil
		},
	}
	list.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(list)
	return cmd
}
