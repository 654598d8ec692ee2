package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrRunNotFound is returned when no run matches an id or prefix.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when an id prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// RunInfo describes a batch when it starts.
type RunInfo struct {
	Roots     []string
	OutputDir string
	Workers   int
	Backend   string
	Seed      int64
	DryRun    bool
}

// Totals are written when a batch finishes.
type Totals struct {
	Status  Status
	Total   int
	Routed  int
	Failed  int
	Elapsed time.Duration
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	RunInfo
	Totals
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// StartRun records the beginning of a batch under id.
func (s *Store) StartRun(ctx context.Context, id string, info RunInfo, startedAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid run id %q: %w", id, err)
	}
	roots, err := json.Marshal(info.Roots)
	if err != nil {
		return fmt.Errorf("marshal roots: %w", err)
	}
	err = s.exec(ctx,
		`INSERT INTO runs (id, started_at, roots_json, output_dir, workers, backend, seed, dry_run, status)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		formatTime(startedAt),
		string(roots),
		info.OutputDir,
		info.Workers,
		info.Backend,
		info.Seed,
		boolToInt(info.DryRun),
		StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the final counts of a batch.
func (s *Store) FinishRun(ctx context.Context, id string, totals Totals, finishedAt time.Time) error {
	if totals.Status == "" {
		totals.Status = StatusCompleted
	}
	err := s.exec(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, total = ?, routed = ?, failed = ?, elapsed_ms = ?
         WHERE id = ?`,
		formatTime(finishedAt),
		totals.Status,
		totals.Total,
		totals.Routed,
		totals.Failed,
		totals.Elapsed.Milliseconds(),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, roots_json, output_dir, workers, backend, seed,
       dry_run, status, total, routed, failed, elapsed_ms`

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FindRun resolves a full run id or a unique prefix of one.
func (s *Store) FindRun(ctx context.Context, idOrPrefix string) (Run, error) {
	idOrPrefix = strings.ToLower(strings.TrimSpace(idOrPrefix))
	if idOrPrefix == "" {
		return Run{}, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id LIKE ? ESCAPE '\\' ORDER BY started_at DESC LIMIT 2",
		escapeLike(idOrPrefix)+"%",
	)
	if err != nil {
		return Run{}, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		started   sql.NullString
		finished  sql.NullString
		rootsJSON string
		dryRun    int
		status    string
		elapsedMS int64
	)
	if err := row.Scan(
		&run.ID,
		&started,
		&finished,
		&rootsJSON,
		&run.OutputDir,
		&run.Workers,
		&run.Backend,
		&run.Seed,
		&dryRun,
		&status,
		&run.Total,
		&run.Routed,
		&run.Failed,
		&elapsedMS,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(rootsJSON), &run.Roots); err != nil {
		return Run{}, fmt.Errorf("decode roots for run %s: %w", run.ID, err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.DryRun = dryRun != 0
	run.Status = Status(status)
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return run, nil
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
