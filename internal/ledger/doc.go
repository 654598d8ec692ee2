// Package ledger keeps an SQLite audit trail of batch runs.
//
// Each run gets a UUID and one row per processed document recording the
// outcome, detected language and destination. The ledger is append-only and
// informational: the next run re-scans the roots from scratch and never
// consults it to skip work. The `history` command reads it back.
package ledger
