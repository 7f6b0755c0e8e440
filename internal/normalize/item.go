package normalize

import (
	"romnorm/internal/inputkind"
)

// Status is the lifecycle state of an Item.
type Status string

const (
	StatusOK        Status = "ok"
	StatusFailed    Status = "failed"
	StatusPlanned   Status = "planned"
	StatusSucceeded Status = "succeeded"
	StatusCancelled Status = "cancelled"
)

// Action is the planned treatment of an Item.
type Action string

const (
	ActionNone    Action = "none"
	ActionConvert Action = "convert"
)

// IssueCode classifies a structural validation failure.
type IssueCode string

const (
	IssueMissingTrackFile IssueCode = "missing-track-file"
	IssueInvalidPath      IssueCode = "invalid-path"
	IssueNoTrackEntries   IssueCode = "no-track-entries"
	IssueMissingManifest  IssueCode = "missing-manifest"
)

// Issue is one validation failure attached to an Item.
type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

// Item is one input and the decision made about it. Items are values: the
// planner and executor return new items rather than mutating their inputs.
type Item struct {
	InputPath   string         `json:"input_path"`
	InputKind   inputkind.Kind `json:"input_kind"`
	PlatformID  string         `json:"platform_id,omitempty"`
	Status      Status         `json:"status"`
	Issues      []Issue        `json:"issues,omitempty"`
	Action      Action         `json:"action"`
	OutputPath  string         `json:"output_path,omitempty"`
	ConverterID string         `json:"converter_id,omitempty"`
	ToolPath    string         `json:"tool_path,omitempty"`
	Args        []string       `json:"args,omitempty"`
	TempDir     string         `json:"temp_dir,omitempty"`
}

// NewItem returns an ok item with no action.
func NewItem(path string, kind inputkind.Kind, platformID string) Item {
	return Item{
		InputPath:  path,
		InputKind:  kind,
		PlatformID: platformID,
		Status:     StatusOK,
		Action:     ActionNone,
	}
}

// WithIssues returns a copy of the item carrying issues. Any issue marks the
// item failed and clears a planned conversion.
func (i Item) WithIssues(issues ...Issue) Item {
	out := i.clone()
	if len(issues) == 0 {
		return out
	}
	out.Issues = append(out.Issues, issues...)
	out.Status = StatusFailed
	out.Action = ActionNone
	out.OutputPath = ""
	out.ConverterID = ""
	out.ToolPath = ""
	out.Args = nil
	out.TempDir = ""
	return out
}

// IsConvert reports whether the item is a planned conversion.
func (i Item) IsConvert() bool {
	return i.Action == ActionConvert && i.Status == StatusPlanned
}

func (i Item) clone() Item {
	out := i
	if i.Issues != nil {
		out.Issues = append([]Issue(nil), i.Issues...)
	}
	if i.Args != nil {
		out.Args = append([]string(nil), i.Args...)
	}
	return out
}
