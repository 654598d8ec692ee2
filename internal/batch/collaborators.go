package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/afero"

	"lingosort/internal/config"
	"lingosort/internal/extract"
	"lingosort/internal/langdetect"
	"lingosort/internal/logging"
	"lingosort/internal/services"
	"lingosort/internal/services/llm"
	"lingosort/internal/services/tika"
)

// buildModel selects the detection backend named by classifier.backend.
func buildModel(cfg *config.Config) (langdetect.Model, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Classifier.Backend)) {
	case "", config.BackendWhatlang:
		model, err := langdetect.NewWhatlang(cfg.Classifier.Candidates)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "classifier", "init", "classifier.candidates", err)
		}
		return model, nil
	case config.BackendLLM:
		return llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "init", fmt.Sprintf("classifier.backend %q is not supported", cfg.Classifier.Backend), nil)
	}
}

// buildClassifier seeds and prepares the model once. The result is shared
// read-only by every worker.
func buildClassifier(ctx context.Context, cfg *config.Config, model langdetect.Model, logger *slog.Logger) (*langdetect.Classifier, error) {
	if model == nil {
		var err error
		model, err = buildModel(cfg)
		if err != nil {
			return nil, err
		}
	}
	return langdetect.New(ctx, model, langdetect.Options{
		Seed:          cfg.Classifier.Seed,
		MinConfidence: cfg.Classifier.MinConfidence,
		Serialize:     cfg.Classifier.Serialize,
		Logger:        logger,
	})
}

// buildExtractor reads plain-text extensions directly and sends everything
// else to Tika. The Tika server is pinged only when a configured extension
// needs it.
func buildExtractor(ctx context.Context, fs afero.Fs, cfg *config.Config, logger *slog.Logger) (extract.Extractor, error) {
	client := tika.NewClient(fs, tika.Config{
		URL:               cfg.Extraction.TikaURL,
		Timeout:           cfg.ExtractionTimeout(),
		RequestsPerSecond: cfg.Extraction.RequestsPerSecond,
	})
	mux := extract.NewMux(client)
	mux.Handle(cfg.Extraction.PlainExtensions, extract.NewPlainText(fs))

	if !needsTika(cfg) {
		logger.Debug("tika not required for configured extensions")
		return mux, nil
	}
	version, err := client.Ping(ctx)
	if err != nil {
		logging.ErrorWithContext(logger, "tika server unreachable", "tika_unreachable",
			logging.String("tika_url", cfg.Extraction.TikaURL),
			logging.String(logging.FieldErrorHint, "start the server (java -jar tika-server.jar) or set extraction.tika_url"),
			logging.Error(err),
		)
		return nil, err
	}
	logger.Info("tika server ready",
		logging.String("tika_url", cfg.Extraction.TikaURL),
		logging.String("tika_version", version),
	)
	return mux, nil
}

func needsTika(cfg *config.Config) bool {
	plain := make(map[string]struct{}, len(cfg.Extraction.PlainExtensions))
	for _, ext := range cfg.Extraction.PlainExtensions {
		plain[strings.ToLower(ext)] = struct{}{}
	}
	for _, ext := range cfg.Scan.Extensions {
		if _, ok := plain[strings.ToLower(ext)]; !ok {
			return true
		}
	}
	return false
}
