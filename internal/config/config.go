package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories a batch reads from and writes to.
type Paths struct {
	RootDirs  []string `toml:"root_dirs"`
	OutputDir string   `toml:"output_dir"`
	LogDir    string   `toml:"log_dir"`
}

// Scan controls which files are picked up from the root directories.
type Scan struct {
	Extensions  []string `toml:"extensions"`
	ExcludeDirs []string `toml:"exclude_dirs"`
}

// Workers sizes the worker pool. Count 0 means logical CPUs minus one.
type Workers struct {
	Count int `toml:"count"`
}

// Sampling controls the excerpt handed to the language detector.
type Sampling struct {
	WindowWords int `toml:"window_words"`
}

// Classifier selects and tunes the language detection backend.
type Classifier struct {
	// Backend is "whatlang" (in-process) or "llm" (OpenAI-compatible API).
	Backend string `toml:"backend"`
	// Seed fixes any randomness in the backend so reruns agree. Default: 42
	Seed int64 `toml:"seed"`
	// MinConfidence below which a detection is treated as unrecognized.
	MinConfidence float64 `toml:"min_confidence"`
	// Candidates optionally restricts detection to these languages.
	Candidates []string `toml:"candidates"`
	// Serialize forces one detection at a time for backends that are not
	// safe for concurrent use.
	Serialize bool `toml:"serialize"`
}

// Routing maps detected language codes to output sub-directories.
type Routing struct {
	Languages map[string]string `toml:"languages"`
}

// Extraction configures the document text extraction collaborator.
type Extraction struct {
	TikaURL           string   `toml:"tika_url"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	PlainExtensions   []string `toml:"plain_extensions"`
}

// LLM contains connection settings for the llm classifier backend.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Ledger configures the SQLite audit log of per-file outcomes.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// RunLogs writes a JSON log per batch run next to the shared log.
	RunLogs bool `toml:"run_logs"`
	// RetentionDays prunes per-run logs older than this. 0 keeps them forever.
	RetentionDays int `toml:"retention_days"`
}

// Config encapsulates all configuration values for lingosort.
//
// Configuration sections by subsystem:
//   - Paths: input roots, output tree and log directory
//   - Scan: extension allow-list and excluded directories
//   - Workers: worker pool size
//   - Sampling: excerpt window size
//   - Classifier: detection backend, seed and thresholds
//   - Routing: language code to sub-directory table
//   - Extraction: Tika server and plain-text extensions
//   - LLM: connection settings for the llm backend
//   - Ledger: SQLite audit log
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Scan       Scan       `toml:"scan"`
	Workers    Workers    `toml:"workers"`
	Sampling   Sampling   `toml:"sampling"`
	Classifier Classifier `toml:"classifier"`
	Routing    Routing    `toml:"routing"`
	Extraction Extraction `toml:"extraction"`
	LLM        LLM        `toml:"llm"`
	Ledger     Ledger     `toml:"ledger"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// ConfigEnv names an environment variable that selects the config file when
// no explicit path is given.
const ConfigEnv = "LINGOSORT_CONFIG"

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. Unknown keys are rejected so a
// misspelled section does not silently fall back to defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file).DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			keys := make([]string, 0, len(strict.Errors))
			for _, e := range strict.Errors {
				keys = append(keys, strings.Join(e.Key(), "."))
			}
			return fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath picks, in order: the explicit path, $LINGOSORT_CONFIG,
// the default location, then ./lingosort.toml. An explicit or env path is
// returned even when the file does not exist so defaults still apply.
func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigEnv))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		case err != nil:
			return "", false, fmt.Errorf("stat config: %w", err)
		case info.IsDir():
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lingosort.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the log directory and the ledger directory.
// The output tree is created lazily per language by the router.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir}
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Ledger.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WorkerCount resolves the configured pool size. Zero means logical CPUs
// minus one, never less than one.
func (c *Config) WorkerCount() int {
	if c.Workers.Count > 0 {
		return c.Workers.Count
	}
	return DefaultWorkerCount()
}

// DefaultWorkerCount returns logical CPUs minus one, with a floor of one.
func DefaultWorkerCount() int {
	return max(runtime.NumCPU()-1, 1)
}

// ExtractionTimeout returns the per-file extraction timeout.
func (c *Config) ExtractionTimeout() time.Duration {
	return time.Duration(c.Extraction.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
