package logging

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// RunLogPattern matches per-run log files for retention pruning.
const RunLogPattern = "run-*.log"

// RunLogPath returns the per-run JSON log location inside dir.
func RunLogPath(dir, runID string) string {
	return filepath.Join(dir, "run-"+runID+".log")
}

// OpenRunLog tees base into a JSON file dedicated to one run. The returned
// closer must be called once the run finishes. An empty dir returns base
// unchanged.
func OpenRunLog(base *slog.Logger, dir, runID, level string) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(dir) == "" || strings.TrimSpace(runID) == "" {
		return base, nopCloser{}, nil
	}
	file, err := openLogFile(RunLogPath(dir, runID))
	if err != nil {
		return base, nopCloser{}, fmt.Errorf("open run log: %w", err)
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	handler := newJSONHandler(file, levelVar, false)
	return TeeLogger(base, handler), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
