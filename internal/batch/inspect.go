package batch

import (
	"context"
	"strings"

	"github.com/spf13/afero"

	"lingosort/internal/config"
	"lingosort/internal/langdetect"
	"lingosort/internal/logging"
	"lingosort/internal/organizer"
	"lingosort/internal/services"
	"lingosort/internal/textutil"
)

// Inspection explains how a single document would be handled.
type Inspection struct {
	Path      string
	Words     int
	Excerpt   string
	Result    langdetect.Result
	Seed      int64
	Placement organizer.Placement
	// Routable is false when the document would stay in place.
	Routable bool
}

// Inspect extracts, samples and classifies path without moving anything.
func Inspect(ctx context.Context, cfg *config.Config, path string, opts Options) (Inspection, error) {
	if cfg == nil {
		return Inspection{}, services.Wrap(services.ErrConfiguration, "inspect", "init", "config is required", nil)
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	abs, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return Inspection{}, services.Wrap(services.ErrMissingSource, "inspect", "resolve", path, err)
	}
	if info, statErr := fs.Stat(abs); statErr != nil || !info.Mode().IsRegular() {
		return Inspection{}, services.Wrap(services.ErrMissingSource, "inspect", "stat", abs, statErr)
	}

	classifier, err := buildClassifier(ctx, cfg, opts.Model, logger)
	if err != nil {
		return Inspection{}, err
	}
	extractor := opts.Extractor
	if extractor == nil {
		if extractor, err = buildExtractor(ctx, fs, cfg, logger); err != nil {
			return Inspection{}, err
		}
	}
	router, err := organizer.New(fs, organizer.Options{
		OutputDir: cfg.Paths.OutputDir,
		Languages: cfg.Routing.Languages,
		DryRun:    true,
		Logger:    logger,
	})
	if err != nil {
		return Inspection{}, err
	}

	text, err := extractor.Extract(ctx, abs)
	if err != nil {
		return Inspection{}, err
	}
	out := Inspection{
		Path:    abs,
		Words:   textutil.WordCount(text),
		Excerpt: textutil.Sample(text, cfg.Sampling.WindowWords),
		Seed:    classifier.Seed(),
	}
	if out.Excerpt == "" {
		return out, nil
	}
	out.Result = classifier.Classify(ctx, out.Excerpt)
	if out.Result.Recognized() {
		out.Placement, out.Routable = router.Placement(abs, out.Result.Code)
	}
	return out, nil
}
