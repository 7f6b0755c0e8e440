package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"romnorm/internal/config"
	"romnorm/internal/inputkind"
	"romnorm/internal/registry"
)

func newConvertersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "converters",
		Short: "Inspect the converter registry",
	}
	cmd.AddCommand(newConvertersListCommand(ctx))
	cmd.AddCommand(newConvertersExportCommand(ctx))
	return cmd
}

type converterView struct {
	ConverterID     string   `json:"converter_id"`
	Name            string   `json:"name,omitempty"`
	Enabled         bool     `json:"enabled"`
	ExePath         string   `json:"exe_path"`
	PlatformIDs     []string `json:"platform_ids"`
	Extensions      []string `json:"extensions"`
	InputKinds      []string `json:"input_kinds"`
	OutputExtension string   `json:"output_extension"`
	ArgsTemplate    []string `json:"args_template"`
}

func newConverterView(def registry.ConverterDefinition) converterView {
	return converterView{
		ConverterID:     def.ConverterID,
		Name:            def.Name,
		Enabled:         def.Enabled,
		ExePath:         def.ExePath,
		PlatformIDs:     def.PlatformIDs,
		Extensions:      def.Extensions,
		InputKinds:      kindStrings(def.InputKinds),
		OutputExtension: def.OutputExtension,
		ArgsTemplate:    def.ArgsTemplate,
	}
}

func newConvertersListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List converter definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.converterRegistry()
			if err != nil {
				return err
			}
			defs, err := reg.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load converters: %w", err)
			}
			if jsonOutput {
				views := make([]converterView, 0, len(defs))
				for _, def := range defs {
					views = append(views, newConverterView(def))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(defs) == 0 {
				fmt.Fprintf(out, "No converters defined (%s)\n", reg.Path())
				return nil
			}
			rows := make([][]string, 0, len(defs))
			for _, def := range defs {
				rows = append(rows, []string{
					def.ConverterID,
					yesNo(def.Enabled),
					dash(strings.Join(def.PlatformIDs, ", ")),
					dash(strings.Join(def.Extensions, ", ")),
					dash(strings.Join(kindStrings(def.InputKinds), ", ")),
					def.OutputExtension,
					def.ExePath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Enabled", "Platforms", "Extensions", "Kinds", "Output", "Tool"},
				rows,
				nil,
			))
			fmt.Fprintf(out, "Source: %s\n", reg.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newConvertersExportCommand(ctx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current converter definitions to a document",
		Long: "Write the current converter definitions to a document.\n\n" +
			"The format follows the file extension (.json or YAML). Legacy rules are\n" +
			"synthesized first when no converters document exists yet.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.converterRegistry()
			if err != nil {
				return err
			}
			defs, err := reg.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load converters: %w", err)
			}
			path := strings.TrimSpace(target)
			if path == "" {
				path = reg.Path()
			} else if path, err = config.ExpandPath(path); err != nil {
				return fmt.Errorf("resolve export path: %w", err)
			}
			validator := registry.NewStructuralValidator()
			exporter := registry.NewConverterRegistry(path, validator, config.LegacyConversion{})
			if err := exporter.Save(cmd.Context(), defs); err != nil {
				return fmt.Errorf("export converters: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d converters to %s\n", len(defs), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "output", "o", "", "Destination document (defaults to conversion.converters_path)")
	return cmd
}

func kindStrings(kinds []inputkind.Kind) []string {
	out := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, kind.String())
	}
	return out
}
