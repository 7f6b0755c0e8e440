// Package history keeps an audit log of normalization runs in SQLite.
//
// Every executed report is stored with its per-item results so operators can
// review what a past run converted, skipped or failed. The log is read-only
// from the executor's point of view: it is never consulted to resume work.
package history
