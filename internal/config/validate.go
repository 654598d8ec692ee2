package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"lingosort/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateClassifier(); err != nil {
		return err
	}
	if err := c.validateRouting(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	for _, root := range c.Paths.RootDirs {
		if root == c.Paths.OutputDir {
			return fmt.Errorf("paths.output_dir must differ from root %q", root)
		}
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 0 {
		return errors.New("workers.count must be >= 0 (0 selects logical CPUs minus one)")
	}
	if c.Sampling.WindowWords <= 0 {
		return errors.New("sampling.window_words must be positive")
	}
	return nil
}

func (c *Config) validateClassifier() error {
	switch c.Classifier.Backend {
	case BackendWhatlang:
	case BackendLLM:
		if c.LLM.APIKey == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("llm.api_key is required when classifier.backend is %q. Set LINGOSORT_LLM_API_KEY or edit %s (create with 'lingosort config init')", BackendLLM, defaultPath)
		}
		if _, err := parseHTTPURL(c.LLM.BaseURL); err != nil {
			return fmt.Errorf("llm.base_url: %w", err)
		}
	default:
		return fmt.Errorf("classifier.backend must be %q or %q, got %q", BackendWhatlang, BackendLLM, c.Classifier.Backend)
	}
	if c.Classifier.MinConfidence < 0 || c.Classifier.MinConfidence > 1 {
		return errors.New("classifier.min_confidence must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateRouting() error {
	if len(c.Routing.Languages) == 0 {
		return errors.New("routing.languages must map at least one language")
	}
	codes := make([]string, 0, len(c.Routing.Languages))
	for code := range c.Routing.Languages {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		if language.ToISO2(code) == "" {
			return fmt.Errorf("routing.languages: unknown language code %q", code)
		}
		if c.Routing.Languages[code] == "" {
			return fmt.Errorf("routing.languages.%s must name a directory", code)
		}
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if _, err := parseHTTPURL(c.Extraction.TikaURL); err != nil {
		return fmt.Errorf("extraction.tika_url: %w", err)
	}
	if c.Extraction.TimeoutSeconds <= 0 {
		return errors.New("extraction.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func parseHTTPURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("scheme must be http or https, got %q", raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("host missing in %q", raw)
	}
	return parsed, nil
}
