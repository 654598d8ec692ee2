// Package logging assembles structured slog loggers and formatting helpers used
// across lingosort.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so worker code tags log lines
// with the run ID, worker number and file being processed. Each batch run can
// additionally tee its records into a per-run JSON file, and old run logs are
// pruned by retention.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field names.
package logging
