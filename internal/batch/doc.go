// Package batch wires configuration into one complete sorting run.
//
// Run validates settings, takes the single-run lock, builds the language
// classifier once, checks the extraction server, enumerates the roots,
// fills the work queue and hands it to the worker pool. Every problem that
// can abort the batch surfaces before the first task is queued; once the
// pool starts, failures are per document. Inspect reuses the same
// collaborators to explain how one document would be classified.
package batch
