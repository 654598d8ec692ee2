package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lingosort/internal/language"
	"lingosort/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeClassifier()
	c.normalizeRouting()
	c.normalizeExtraction()
	c.normalizeLLM()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	roots := make([]string, 0, len(c.Paths.RootDirs))
	seen := make(map[string]struct{}, len(c.Paths.RootDirs))
	for _, root := range c.Paths.RootDirs {
		if strings.TrimSpace(root) == "" {
			continue
		}
		expanded, err := expandPath(strings.TrimSpace(root))
		if err != nil {
			return fmt.Errorf("paths.root_dirs: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		roots = append(roots, expanded)
	}
	c.Paths.RootDirs = roots
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.Extensions = normalizeExtensions(c.Scan.Extensions)
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = defaultExtensions()
	}
	dirs := make([]string, 0, len(c.Scan.ExcludeDirs))
	for _, dir := range c.Scan.ExcludeDirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if strings.HasPrefix(dir, "~") || filepath.IsAbs(dir) {
			if expanded, err := expandPath(dir); err == nil {
				dir = expanded
			}
		}
		dirs = append(dirs, dir)
	}
	c.Scan.ExcludeDirs = dirs
}

func (c *Config) normalizeClassifier() {
	c.Classifier.Backend = strings.ToLower(strings.TrimSpace(c.Classifier.Backend))
	if c.Classifier.Backend == "" {
		c.Classifier.Backend = defaultClassifierBackend
	}
	c.Classifier.Candidates = language.NormalizeList(c.Classifier.Candidates)
}

func (c *Config) normalizeRouting() {
	if len(c.Routing.Languages) == 0 {
		c.Routing.Languages = defaultLanguages()
		return
	}
	table := make(map[string]string, len(c.Routing.Languages))
	for code, dir := range c.Routing.Languages {
		normalized := language.ToISO2(code)
		if normalized == "" {
			// Leave unknown keys visible to Validate.
			normalized = strings.ToLower(strings.TrimSpace(code))
		}
		if strings.TrimSpace(dir) == "" {
			table[normalized] = ""
			continue
		}
		table[normalized] = textutil.DirName(dir)
	}
	c.Routing.Languages = table
}

func (c *Config) normalizeExtraction() {
	c.Extraction.TikaURL = strings.TrimSpace(c.Extraction.TikaURL)
	if value, ok := os.LookupEnv("TIKA_URL"); ok && strings.TrimSpace(value) != "" {
		c.Extraction.TikaURL = strings.TrimSpace(value)
	}
	if c.Extraction.TikaURL == "" {
		c.Extraction.TikaURL = defaultTikaURL
	}
	c.Extraction.TikaURL = strings.TrimRight(c.Extraction.TikaURL, "/")
	if c.Extraction.TimeoutSeconds <= 0 {
		c.Extraction.TimeoutSeconds = defaultExtractionTimeout
	}
	if c.Extraction.RequestsPerSecond < 0 {
		c.Extraction.RequestsPerSecond = 0
	}
	c.Extraction.PlainExtensions = normalizeExtensions(c.Extraction.PlainExtensions)
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if value, ok := os.LookupEnv("LINGOSORT_LLM_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.LLM.APIKey = strings.TrimSpace(value)
	} else if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeLedger() error {
	var err error
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	if c.Ledger.Path, err = expandPath(c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// normalizeExtensions lowercases, adds the leading dot, and drops duplicates.
func normalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, ext := range values {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
