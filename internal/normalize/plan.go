package normalize

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"romnorm/internal/logging"
	"romnorm/internal/registry"
)

// Plan is an ordered, immutable sequence of items for one batch.
type Plan struct {
	items     []Item
	cancelled bool
}

// NewPlan builds a plan from items. The slice is copied.
func NewPlan(items []Item, cancelled bool) Plan {
	copied := make([]Item, len(items))
	for i, item := range items {
		copied[i] = item.clone()
	}
	return Plan{items: copied, cancelled: cancelled}
}

// Len returns the number of items.
func (p Plan) Len() int { return len(p.items) }

// Item returns a copy of the item at index i.
func (p Plan) Item(i int) Item { return p.items[i].clone() }

// Items returns a copy of every item in order.
func (p Plan) Items() []Item {
	out := make([]Item, len(p.items))
	for i, item := range p.items {
		out[i] = item.clone()
	}
	return out
}

// Cancelled reports whether planning stopped early.
func (p Plan) Cancelled() bool { return p.cancelled }

// ConvertCount returns the number of planned conversions.
func (p Plan) ConvertCount() int {
	n := 0
	for _, item := range p.items {
		if item.IsConvert() {
			n++
		}
	}
	return n
}

// Planner turns inspected items into a Plan.
type Planner struct {
	Converters []registry.ConverterDefinition
	Formats    []registry.FormatDefinition
	// OutputRoot places converted files; empty keeps them beside their input.
	OutputRoot string
	// TempRoot hosts per-item scratch directories; empty uses os.TempDir().
	TempRoot string
	Logger   *slog.Logger
}

// Build decides an action for every item. Items that are not ok pass through
// untouched. If ctx is cancelled mid-build the plan holds the items decided
// so far and reports Cancelled.
func (p Planner) Build(ctx context.Context, items []Item) Plan {
	logger := logging.NewComponentLogger(p.Logger, "planner")
	planned := make([]Item, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			logger.Info("planning cancelled", logging.Int("items", len(planned)))
			return Plan{items: planned, cancelled: true}
		}
		planned = append(planned, p.decide(item, logger))
	}
	return Plan{items: planned}
}

func (p Planner) decide(item Item, logger *slog.Logger) Item {
	out := item.clone()
	if item.Status != StatusOK {
		return out
	}
	preferred := registry.PreferredOutputs(p.Formats, item.PlatformID, item.InputKind)
	def, ok := Match(item, p.Converters, preferred)
	if !ok {
		logger.Debug("no converter matched",
			logging.String(logging.FieldInputPath, item.InputPath),
			logging.String("input_kind", item.InputKind.String()),
			logging.String("platform_id", item.PlatformID),
		)
		return out
	}

	outputPath := p.outputPath(item.InputPath, def.OutputExtension)
	tempDir := p.tempDir(def.ConverterID, item.InputPath)
	out.Status = StatusPlanned
	out.Action = ActionConvert
	out.OutputPath = outputPath
	out.ConverterID = def.ConverterID
	out.ToolPath = def.ExePath
	out.TempDir = tempDir
	out.Args = renderArgs(def.ArgsTemplate, map[string]string{
		"{input}":      item.InputPath,
		"{output}":     outputPath,
		"{output_dir}": filepath.Dir(outputPath),
		"{temp_dir}":   tempDir,
	})

	attrs := logging.DecisionAttrs("converter_selection", def.ConverterID, "matched kind, platform and extension")
	attrs = append(attrs,
		logging.String(logging.FieldInputPath, item.InputPath),
		logging.String("decision_selected", def.OutputExtension),
		logging.Any("decision_candidates", preferred),
	)
	logger.Debug("converter selected", logging.Args(attrs...)...)
	return out
}

func (p Planner) outputPath(input, ext string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.Dir(input)
	if strings.TrimSpace(p.OutputRoot) != "" {
		dir = p.OutputRoot
	}
	return filepath.Join(dir, stem+ext)
}

func (p Planner) tempDir(converterID, input string) string {
	root := p.TempRoot
	if strings.TrimSpace(root) == "" {
		root = os.TempDir()
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(root, "romnorm", converterID+"-"+stem)
}

func renderArgs(template []string, values map[string]string) []string {
	pairs := make([]string, 0, len(values)*2)
	for placeholder, value := range values {
		pairs = append(pairs, placeholder, value)
	}
	replacer := strings.NewReplacer(pairs...)
	args := make([]string, len(template))
	for i, arg := range template {
		args[i] = replacer.Replace(arg)
	}
	return args
}
