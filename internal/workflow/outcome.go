package workflow

import (
	"context"
	"errors"
	"time"

	"lingosort/internal/services"
)

// Outcome labels how one document left the pipeline.
type Outcome string

const (
	OutcomeRouted           Outcome = "routed"
	OutcomeUnrecognized     Outcome = "unrecognized"
	OutcomeEmpty            Outcome = "empty"
	OutcomeMissing          Outcome = "missing"
	OutcomeExtractionFailed Outcome = "extraction_failed"
	OutcomeRouteFailed      Outcome = "route_failed"
	OutcomeCancelled        Outcome = "cancelled"
	OutcomeFailed           Outcome = "failed"
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{
	OutcomeRouted,
	OutcomeUnrecognized,
	OutcomeEmpty,
	OutcomeMissing,
	OutcomeExtractionFailed,
	OutcomeRouteFailed,
	OutcomeCancelled,
	OutcomeFailed,
}

// Failure reports whether o should draw an operator's attention.
func (o Outcome) Failure() bool {
	switch o {
	case OutcomeExtractionFailed, OutcomeRouteFailed, OutcomeFailed:
		return true
	}
	return false
}

// Record is the per-document result handed to the Observer.
type Record struct {
	Path        string
	Outcome     Outcome
	Language    string
	Confidence  float64
	Destination string
	Error       string
	Worker      int
	Duration    time.Duration
	FinishedAt  time.Time
}

// Observer receives one Record per processed task. Implementations must be
// safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, rec Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, rec Record)

// Observe implements Observer.
func (f ObserverFunc) Observe(ctx context.Context, rec Record) { f(ctx, rec) }

func outcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeRouted
	case errors.Is(err, services.ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	case errors.Is(err, services.ErrMissingSource):
		return OutcomeMissing
	case errors.Is(err, services.ErrUnrecognizedLanguage):
		return OutcomeUnrecognized
	case errors.Is(err, services.ErrExtraction):
		return OutcomeExtractionFailed
	case errors.Is(err, services.ErrRoute):
		return OutcomeRouteFailed
	default:
		return OutcomeFailed
	}
}
