package langdetect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"lingosort/internal/language"
	"lingosort/internal/logging"
	"lingosort/internal/services"
)

// DefaultSeed keeps probabilistic backends reproducible across runs.
const DefaultSeed int64 = 42

// Detection is the raw answer of a Model. Code may be any form the language
// package understands (ISO 639-1/2/3, BCP 47 tag, English name).
type Detection struct {
	Code       string
	Confidence float64
}

// Model identifies the language of a text.
type Model interface {
	Detect(ctx context.Context, text string) (Detection, error)
}

// Seeder is implemented by models with internal randomness.
type Seeder interface {
	Seed(seed int64) error
}

// Preparer is implemented by models that load resources before first use.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Result is the normalized classification of one excerpt.
type Result struct {
	// Code is an ISO 639-1 code, empty when unrecognized.
	Code       string
	Confidence float64
}

// Unrecognized is returned whenever no usable language was detected.
var Unrecognized = Result{}

// Recognized reports whether r carries a language code.
func (r Result) Recognized() bool {
	return r.Code != ""
}

// Options tunes the classifier.
type Options struct {
	// Seed is applied once to models implementing Seeder. Zero selects DefaultSeed.
	Seed int64
	// MinConfidence rejects detections scoring below it.
	MinConfidence float64
	// Serialize allows only one Detect call at a time.
	Serialize bool
	Logger    *slog.Logger
}

// Classifier is safe for concurrent use once returned by New.
type Classifier struct {
	model         Model
	seed          int64
	minConfidence float64
	mu            *sync.Mutex
	logger        *slog.Logger
}

// New seeds and prepares model, then wraps it. Failures are configuration
// errors and must abort the batch before any work is queued.
func New(ctx context.Context, model Model, opts Options) (*Classifier, error) {
	if model == nil {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "init", "no language model configured", nil)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	if seeder, ok := model.(Seeder); ok {
		if err := seeder.Seed(seed); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "classifier", "seed", fmt.Sprintf("seed %d rejected", seed), err)
		}
	}
	if preparer, ok := model.(Preparer); ok {
		if err := preparer.Prepare(ctx); err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "classifier", "prepare", "language model unavailable", err)
		}
	}

	c := &Classifier{
		model:         model,
		seed:          seed,
		minConfidence: opts.MinConfidence,
		logger:        logging.NewComponentLogger(opts.Logger, "classifier"),
	}
	if opts.Serialize {
		c.mu = &sync.Mutex{}
	}
	return c, nil
}

// Seed returns the seed applied during construction.
func (c *Classifier) Seed() int64 {
	return c.seed
}

// Classify identifies the language of excerpt.
func (c *Classifier) Classify(ctx context.Context, excerpt string) Result {
	if strings.TrimSpace(excerpt) == "" {
		return Unrecognized
	}
	detection, err := c.detect(ctx, excerpt)
	if err != nil {
		logging.WithContext(ctx, c.logger).Debug("language detection failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "classify_failed"),
		)
		return Unrecognized
	}
	code := language.ToISO2(detection.Code)
	if code == "" {
		return Unrecognized
	}
	if detection.Confidence < c.minConfidence {
		logging.WithContext(ctx, c.logger).Debug("detection below confidence threshold",
			logging.String(logging.FieldLanguage, code),
			logging.Float64("confidence", detection.Confidence),
			logging.Float64("min_confidence", c.minConfidence),
		)
		return Unrecognized
	}
	return Result{Code: code, Confidence: detection.Confidence}
}

func (c *Classifier) detect(ctx context.Context, text string) (detection Detection, err error) {
	if c.mu != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("language model panic: %v", r)
		}
	}()
	return c.model.Detect(ctx, text)
}
