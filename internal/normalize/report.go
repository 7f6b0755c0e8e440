package normalize

import (
	"fmt"
	"time"
)

// ResultStatus is the outcome recorded for one attempted item.
type ResultStatus string

const (
	ResultSucceeded ResultStatus = "succeeded"
	ResultFailed    ResultStatus = "failed"
	ResultCancelled ResultStatus = "cancelled"
	ResultSkipped   ResultStatus = "skipped"
	ResultDryRun    ResultStatus = "dry-run"
)

// ResultItem records what happened to one plan item.
type ResultItem struct {
	InputPath   string        `json:"input_path"`
	Status      ResultStatus  `json:"status"`
	OutputPath  string        `json:"output_path,omitempty"`
	Error       string        `json:"error,omitempty"`
	ConverterID string        `json:"converter_id,omitempty"`
	Duration    time.Duration `json:"duration_ns,omitempty"`
}

// Report aggregates the results of one Execute call.
type Report struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Processed  int          `json:"processed"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Errors     []string     `json:"errors"`
	Cancelled  bool         `json:"cancelled"`
	Results    []ResultItem `json:"results"`
}

func newReport(runID string, started time.Time) Report {
	return Report{
		RunID:     runID,
		StartedAt: started,
		Errors:    []string{},
		Results:   []ResultItem{},
	}
}

// record appends result and updates the counters. Cancelled results count as
// processed only.
func (r *Report) record(result ResultItem) {
	r.Results = append(r.Results, result)
	r.Processed++
	switch result.Status {
	case ResultSucceeded, ResultSkipped, ResultDryRun:
		r.Succeeded++
	case ResultFailed:
		r.Failed++
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", result.InputPath, result.Error))
	case ResultCancelled:
		r.Cancelled = true
	}
}

// Attempted returns the number of plan items that received a result. A
// resumed run starts at this index.
func (r Report) Attempted() int { return len(r.Results) }

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
