// Package normalize turns classified inputs into a conversion plan and
// executes it.
//
// Inspect builds an Item from a path, running the structural validators for
// track sheets and game folders. Match picks at most one converter for an
// item. Planner.Build produces an immutable Plan of per-item decisions, and
// Executor.Execute walks that plan strictly in order, running one converter
// process at a time and recording a ResultItem per attempted item.
//
// Per-item failures (unsafe paths, launch failures, non-zero exits, missing
// outputs, timeouts) never stop the batch. Cancellation of the context does:
// the item in flight is recorded as cancelled, later items are left
// unattempted, and the Report is marked cancelled so the plan can be resumed
// from the first unattempted item.
package normalize
