package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"lingosort/internal/config"
	"lingosort/internal/langdetect"
	"lingosort/internal/ledger"
	"lingosort/internal/logging"
	"lingosort/internal/organizer"
	"lingosort/internal/scan"
	"lingosort/internal/services"
	"lingosort/internal/workflow"
	"lingosort/internal/workqueue"
)

// LockFileName guards against two runs sorting into the same tree at once.
const LockFileName = "lingosort.lock"

// Options overrides configuration for one run and injects collaborators.
type Options struct {
	// Roots replaces paths.root_dirs when non-empty.
	Roots []string
	// OutputDir replaces paths.output_dir when set.
	OutputDir string
	// Workers replaces workers.count when positive.
	Workers int
	DryRun  bool
	Logger  *slog.Logger

	// FS defaults to the OS filesystem.
	FS afero.Fs
	// Extractor replaces the Tika/plain-text extractor.
	Extractor workflow.Extractor
	// Model replaces the configured detection backend.
	Model langdetect.Model
}

// Report describes a finished run.
type Report struct {
	RunID       string
	Summary     workflow.Summary
	Workers     int
	LogicalCPUs int
	Queued      int
	DryRun      bool
	Cancelled   bool
	RunLogPath  string
	StartedAt   time.Time
	Elapsed     time.Duration
}

// Run executes one sorting batch. The returned error is non-nil only for
// problems detected before any document was queued; per-document failures
// are reported in Report.Summary.
func Run(ctx context.Context, cfg *config.Config, opts Options) (Report, error) {
	started := time.Now()
	if cfg == nil {
		return Report{}, services.Wrap(services.ErrConfiguration, "batch", "init", "config is required", nil)
	}
	runCfg, err := applyOverrides(cfg, opts)
	if err != nil {
		return Report{}, err
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	runID := ledger.NewRunID()
	ctx = services.WithRunID(ctx, runID)
	report := Report{
		RunID:       runID,
		Workers:     runCfg.WorkerCount(),
		LogicalCPUs: runtime.NumCPU(),
		DryRun:      opts.DryRun,
		StartedAt:   started,
	}

	if err := runCfg.EnsureDirectories(); err != nil {
		return report, services.Wrap(services.ErrConfiguration, "batch", "init", "paths.log_dir", err)
	}

	lock := flock.New(filepath.Join(runCfg.Paths.LogDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "batch", "lock", "acquire run lock", err)
	}
	if !locked {
		return report, services.Wrap(services.ErrConfiguration, "batch", "lock", "another lingosort run is already active", nil)
	}
	defer func() { _ = lock.Unlock() }()

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if runCfg.Logging.RunLogs {
		runLogger, closer, logErr := logging.OpenRunLog(logger, runCfg.Paths.LogDir, runID, runCfg.Logging.Level)
		if logErr != nil {
			logging.WarnWithContext(logger, "run log unavailable", "run_log_failed",
				logging.Error(logErr),
				logging.String(logging.FieldErrorHint, "check permissions on logging.log_dir"),
				logging.String(logging.FieldImpact, "this run is only recorded in the shared log"),
			)
		} else {
			logger = runLogger
			report.RunLogPath = logging.RunLogPath(runCfg.Paths.LogDir, runID)
			defer closeQuietly(closer)
		}
		logging.CleanupOldLogs(logger, runCfg.Logging.RetentionDays, runCfg.Paths.LogDir, logging.RunLogPattern, report.RunLogPath)
	}
	batchLogger := logging.WithContext(ctx, logging.NewComponentLogger(logger, "batch"))

	batchLogger.Info("batch starting",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.Int("logical_cpus", report.LogicalCPUs),
		logging.Int("workers", report.Workers),
		logging.String("roots", strings.Join(runCfg.Paths.RootDirs, ",")),
		logging.String("output_dir", runCfg.Paths.OutputDir),
		logging.String("backend", runCfg.Classifier.Backend),
		logging.Any("seed", runCfg.Classifier.Seed),
		logging.Bool("dry_run", opts.DryRun),
	)

	classifier, err := buildClassifier(ctx, runCfg, opts.Model, logger)
	if err != nil {
		return report, err
	}
	extractor := opts.Extractor
	if extractor == nil {
		if extractor, err = buildExtractor(ctx, fs, runCfg, batchLogger); err != nil {
			return report, err
		}
	}
	router, err := organizer.New(fs, organizer.Options{
		OutputDir: runCfg.Paths.OutputDir,
		Languages: runCfg.Routing.Languages,
		DryRun:    opts.DryRun,
		Logger:    logger,
	})
	if err != nil {
		return report, err
	}

	tasks, err := scan.EnumerateAll(fs, runCfg.Paths.RootDirs, scan.Options{
		Extensions:  runCfg.Scan.Extensions,
		ExcludeDirs: runCfg.Scan.ExcludeDirs,
		OutputDir:   runCfg.Paths.OutputDir,
		Logger:      logger,
	})
	if err != nil {
		return report, err
	}

	var observer workflow.Observer
	var store *ledger.Store
	if runCfg.Ledger.Enabled {
		store, err = ledger.Open(runCfg)
		if err != nil {
			return report, err
		}
		defer closeQuietly(store)
		info := ledger.RunInfo{
			Roots:     runCfg.Paths.RootDirs,
			OutputDir: runCfg.Paths.OutputDir,
			Workers:   report.Workers,
			Backend:   runCfg.Classifier.Backend,
			Seed:      classifier.Seed(),
			DryRun:    opts.DryRun,
		}
		if err := store.StartRun(context.WithoutCancel(ctx), runID, info, started); err != nil {
			return report, services.Wrap(services.ErrConfiguration, "ledger", "start run", runCfg.Ledger.Path, err)
		}
		observer = store.Observer(runID, logger)
	}

	pool, err := workflow.NewPool(workflow.Stages{
		Extractor:  extractor,
		Classifier: classifier,
		Router:     router,
	}, workflow.PoolOptions{
		Size:          report.Workers,
		SampleWindow:  runCfg.Sampling.WindowWords,
		ProgressEvery: progressInterval(len(tasks)),
		Logger:        logger,
		Observer:      observer,
	})
	if err != nil {
		return report, err
	}

	queue := workqueue.New[scan.FileTask]()
	for _, task := range tasks {
		if err := queue.Put(task); err != nil {
			return report, fmt.Errorf("enqueue %s: %w", task.Path, err)
		}
	}
	report.Queued = len(tasks)
	batchLogger.Info("documents queued", logging.Int("queued", report.Queued))

	report.Summary = pool.Run(ctx, queue)
	report.Cancelled = errors.Is(ctx.Err(), context.Canceled)
	report.Elapsed = time.Since(started)

	if store != nil {
		status := ledger.StatusCompleted
		if report.Cancelled {
			status = ledger.StatusCancelled
		}
		totals := ledger.Totals{
			Status:  status,
			Total:   report.Summary.Total,
			Routed:  report.Summary.Count(workflow.OutcomeRouted),
			Failed:  report.Summary.Failures(),
			Elapsed: report.Elapsed,
		}
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, totals, time.Now()); err != nil {
			logging.WarnWithContext(batchLogger, "ledger run totals not saved", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history shows this run as still running"),
			)
		}
	}

	batchLogger.Info("batch complete",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("processed", report.Summary.Total),
		logging.Int(string(workflow.OutcomeRouted), report.Summary.Count(workflow.OutcomeRouted)),
		logging.Int("failures", report.Summary.Failures()),
		logging.Bool("cancelled", report.Cancelled),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// applyOverrides copies cfg, applies per-run overrides and validates the
// result.
func applyOverrides(cfg *config.Config, opts Options) (*config.Config, error) {
	runCfg := *cfg
	if len(opts.Roots) > 0 {
		roots := make([]string, 0, len(opts.Roots))
		for _, root := range opts.Roots {
			expanded, err := config.ExpandPath(root)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, "batch", "init", "root "+root, err)
			}
			roots = append(roots, expanded)
		}
		runCfg.Paths.RootDirs = roots
	}
	if strings.TrimSpace(opts.OutputDir) != "" {
		expanded, err := config.ExpandPath(opts.OutputDir)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "batch", "init", "output "+opts.OutputDir, err)
		}
		runCfg.Paths.OutputDir = expanded
	}
	if opts.Workers > 0 {
		runCfg.Workers.Count = opts.Workers
	}
	if len(runCfg.Paths.RootDirs) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "init", "no root directories: set paths.root_dirs or pass ROOT arguments", nil)
	}
	if err := runCfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "batch", "validate", "", err)
	}
	return &runCfg, nil
}

// progressInterval logs roughly ten progress lines per run.
func progressInterval(total int) int {
	if total < 20 {
		return 0
	}
	return total / 10
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}
