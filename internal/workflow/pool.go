package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"lingosort/internal/config"
	"lingosort/internal/langdetect"
	"lingosort/internal/logging"
	"lingosort/internal/organizer"
	"lingosort/internal/scan"
	"lingosort/internal/services"
	"lingosort/internal/textutil"
	"lingosort/internal/workqueue"
)

const (
	stageExtract  = "extract"
	stageClassify = "classify"
	stageRoute    = "route"
)

// Extractor returns the text of a document.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Classifier maps an excerpt to a language. It never fails.
type Classifier interface {
	Classify(ctx context.Context, excerpt string) langdetect.Result
}

// Router places a classified document.
type Router interface {
	SourceExists(path string) bool
	Route(ctx context.Context, src, code string) (organizer.Placement, error)
}

// Stages bundles the collaborators every worker calls.
type Stages struct {
	Extractor  Extractor
	Classifier Classifier
	Router     Router
}

// PoolOptions configures a Pool.
type PoolOptions struct {
	// Size is the number of workers. Zero selects config.DefaultWorkerCount.
	Size int
	// SampleWindow is the excerpt length in words. Zero selects the default.
	SampleWindow int
	// ProgressEvery logs a progress line after this many documents. Zero disables it.
	ProgressEvery int
	Logger        *slog.Logger
	Observer      Observer
}

// Pool processes queued documents with a fixed number of workers.
type Pool struct {
	stages        Stages
	size          int
	window        int
	progressEvery int
	logger        *slog.Logger
	observer      Observer
}

// NewPool validates stages and returns a pool ready to Run.
func NewPool(stages Stages, opts PoolOptions) (*Pool, error) {
	if stages.Extractor == nil || stages.Classifier == nil || stages.Router == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "extractor, classifier and router are required", nil)
	}
	size := opts.Size
	if size <= 0 {
		size = config.DefaultWorkerCount()
	}
	window := opts.SampleWindow
	if window <= 0 {
		window = textutil.DefaultSampleWindow
	}
	return &Pool{
		stages:        stages,
		size:          size,
		window:        window,
		progressEvery: opts.ProgressEvery,
		logger:        logging.NewComponentLogger(opts.Logger, "workflow"),
		observer:      opts.Observer,
	}, nil
}

// Size returns the number of workers Run starts.
func (p *Pool) Size() int {
	return p.size
}

// Run starts the workers, waits until every task put on q before the call
// has been marked done, then closes q and waits for the workers to exit.
// A cancelled ctx does not stop the drain: remaining tasks are recorded as
// cancelled so the barrier still releases.
func (p *Pool) Run(ctx context.Context, q *workqueue.Queue[scan.FileTask]) Summary {
	start := time.Now()
	results := newTally()
	total := q.Unfinished()

	p.logger.Info("worker pool started",
		logging.Int("workers", p.size),
		logging.Int("queued", total),
		logging.Int("sample_window", p.window),
	)

	var wg sync.WaitGroup
	wg.Add(p.size)
	for i := 1; i <= p.size; i++ {
		go func(worker int) {
			defer wg.Done()
			p.work(ctx, worker, q, results, total)
		}(i)
	}

	q.Join()
	q.Close()
	wg.Wait()

	summary := results.snapshot(time.Since(start))
	p.logger.Info("worker pool finished",
		logging.Int("processed", summary.Total),
		logging.Int(string(OutcomeRouted), summary.Count(OutcomeRouted)),
		logging.Int("failures", summary.Failures()),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary
}

func (p *Pool) work(ctx context.Context, worker int, q *workqueue.Queue[scan.FileTask], results *tally, total int) {
	workerCtx := services.WithWorker(ctx, worker)
	for {
		task, ok := q.Get()
		if !ok {
			return
		}
		rec := p.handle(workerCtx, worker, task, q)
		done := results.add(rec)
		if p.observer != nil {
			p.observer.Observe(workerCtx, rec)
		}
		if p.progressEvery > 0 && done%p.progressEvery == 0 {
			p.logger.Info("batch progress",
				logging.Int("done", done),
				logging.Int("total", total),
			)
		}
	}
}

// handle runs one task and always marks it done, including when a stage
// panics.
func (p *Pool) handle(ctx context.Context, worker int, task scan.FileTask, q *workqueue.Queue[scan.FileTask]) (rec Record) {
	started := time.Now()
	ctx = services.WithFile(ctx, task.Path)
	logger := logging.WithContext(ctx, p.logger)
	rec = Record{Path: task.Path, Worker: worker}

	defer func() {
		if r := recover(); r != nil {
			rec.Outcome = OutcomeFailed
			rec.Error = fmt.Sprintf("panic: %v", r)
			logging.ErrorWithContext(logger, "worker recovered from panic", "worker_panic",
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this document; the pipeline hit an unexpected state"),
			)
			rec.Duration = time.Since(started)
			rec.FinishedAt = time.Now().UTC()
		}
		if err := q.TaskDone(); err != nil {
			logger.Error("task completion accounting failed", logging.Error(err))
		}
	}()

	err := p.process(ctx, logger, &rec, task)
	if err != nil {
		rec.Outcome = outcomeFor(err)
		rec.Error = err.Error()
	} else if rec.Outcome == "" {
		rec.Outcome = OutcomeRouted
	}
	rec.Duration = time.Since(started)
	rec.FinishedAt = time.Now().UTC()
	p.logOutcome(logger, rec)
	return rec
}

func (p *Pool) process(ctx context.Context, logger *slog.Logger, rec *Record, task scan.FileTask) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrCancelled, "workflow", "dequeue", "run cancelled before processing", err)
	}
	if !p.stages.Router.SourceExists(task.Path) {
		logging.WarnWithContext(logger, "source vanished before extraction", "source_missing",
			logging.String(logging.FieldErrorHint, "another process moved or deleted the file"),
			logging.String(logging.FieldImpact, "document skipped"),
		)
		return services.Wrap(services.ErrMissingSource, stageExtract, "stat", task.Path, nil)
	}

	text, err := p.stages.Extractor.Extract(services.WithStage(ctx, stageExtract), task.Path)
	if err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, stageExtract, "extract", "run cancelled during extraction", err)
		}
		if !errors.Is(err, services.ErrExtraction) {
			err = services.Wrap(services.ErrExtraction, stageExtract, "extract", task.Path, err)
		}
		logging.ErrorWithContext(logger, "text extraction failed", "extraction_failed",
			logging.String(logging.FieldStage, stageExtract),
			logging.String(logging.FieldErrorHint, "check that the document opens and that the extraction server is healthy"),
			logging.Error(err),
		)
		return err
	}

	excerpt := textutil.Sample(text, p.window)
	if excerpt == "" {
		rec.Outcome = OutcomeEmpty
		return nil
	}

	result := p.stages.Classifier.Classify(services.WithStage(ctx, stageClassify), excerpt)
	rec.Language = result.Code
	rec.Confidence = result.Confidence
	if !result.Recognized() {
		rec.Outcome = OutcomeUnrecognized
		return nil
	}

	placement, err := p.stages.Router.Route(services.WithStage(ctx, stageRoute), task.Path, result.Code)
	if placement.Language != "" {
		rec.Language = placement.Language
	}
	if err == nil {
		rec.Destination = placement.Path
	}
	return err
}

func (p *Pool) logOutcome(logger *slog.Logger, rec Record) {
	attrs := []logging.Attr{
		logging.String(logging.FieldOutcome, string(rec.Outcome)),
		logging.Duration("duration", rec.Duration),
	}
	if rec.Language != "" {
		attrs = append(attrs,
			logging.String(logging.FieldLanguage, rec.Language),
			logging.Float64("confidence", rec.Confidence),
		)
	}
	if rec.Destination != "" {
		attrs = append(attrs, logging.String(logging.FieldDestination, rec.Destination))
	}
	switch rec.Outcome {
	case OutcomeRouted:
		logger.Info("document processed", logging.Args(attrs...)...)
	case OutcomeEmpty:
		logger.Info("document has no extractable text; left in place", logging.Args(attrs...)...)
	case OutcomeUnrecognized:
		logger.Info("language not recognized; left in place", logging.Args(attrs...)...)
	case OutcomeCancelled:
		logger.Debug("document skipped after cancellation", logging.Args(attrs...)...)
	default:
		logger.Debug("document processed", logging.Args(attrs...)...)
	}
}
