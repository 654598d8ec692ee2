package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"lingosort/internal/logging"
	"lingosort/internal/workflow"
)

// Entry is the stored outcome of one document.
type Entry struct {
	RunID       string
	Path        string
	Outcome     workflow.Outcome
	Language    string
	Confidence  float64
	Destination string
	Error       string
	Worker      int
	Duration    time.Duration
	FinishedAt  time.Time
}

// AddEntry appends rec to run id.
func (s *Store) AddEntry(ctx context.Context, runID string, rec workflow.Record) error {
	finished := rec.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	err := s.exec(ctx,
		`INSERT INTO entries (run_id, path, outcome, language, confidence, destination, error, worker, duration_ms, finished_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.Path,
		string(rec.Outcome),
		nullableString(rec.Language),
		rec.Confidence,
		nullableString(rec.Destination),
		nullableString(rec.Error),
		rec.Worker,
		rec.Duration.Milliseconds(),
		formatTime(finished),
	)
	if err != nil {
		return fmt.Errorf("insert entry for %s: %w", rec.Path, err)
	}
	return nil
}

// Entries returns the documents of a run in completion order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, path, outcome, language, confidence, destination, error, worker, duration_ms, finished_at
         FROM entries WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			outcome     string
			language    sql.NullString
			destination sql.NullString
			errText     sql.NullString
			durationMS  int64
			finished    sql.NullString
		)
		if err := rows.Scan(&e.RunID, &e.Path, &outcome, &language, &e.Confidence, &destination, &errText, &e.Worker, &durationMS, &finished); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Outcome = workflow.Outcome(outcome)
		e.Language = language.String
		e.Destination = destination.String
		e.Error = errText.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.FinishedAt = parseTime(finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// OutcomeCounts tallies the entries of a run by outcome.
func (s *Store) OutcomeCounts(ctx context.Context, runID string) (map[workflow.Outcome]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT outcome, COUNT(1) FROM entries WHERE run_id = ? GROUP BY outcome",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[workflow.Outcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[workflow.Outcome(outcome)] = n
	}
	return counts, rows.Err()
}

// Observer returns a workflow.Observer that appends every record to run id.
// Write failures are logged and otherwise ignored; the ledger never fails a
// document.
func (s *Store) Observer(runID string, logger *slog.Logger) workflow.Observer {
	logger = logging.NewComponentLogger(logger, "ledger")
	return workflow.ObserverFunc(func(ctx context.Context, rec workflow.Record) {
		// The run context may already be cancelled while remaining tasks
		// drain; their records still belong in the ledger.
		if err := s.AddEntry(context.WithoutCancel(ctx), runID, rec); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, logger), "ledger write failed", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check disk space and permissions on the ledger database"),
				logging.String(logging.FieldImpact, "history for this document is incomplete"),
			)
		}
	})
}
