package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one normalization batch.
	FieldRunID = "run_id"
	// FieldItemIndex is the 1-based position of an item within its plan.
	FieldItemIndex = "item_index"
	// FieldConverterID names the converter selected for an item.
	FieldConverterID = "converter_id"
	// FieldInputPath is the input file or folder of an item.
	FieldInputPath = "input_path"
	// FieldEventType classifies notable events (warnings, failures).
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldDecisionType labels decision logs (e.g. converter selection).
	FieldDecisionType = "decision_type"
)
