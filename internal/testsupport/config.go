package testsupport

import (
	"path/filepath"
	"testing"

	"lingosort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test:
// one input root, an output tree, a log directory and a ledger file.
// Tika points at an unroutable address so nothing reaches a real server.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.RootDirs = []string{filepath.Join(base, "inbox")}
	cfgVal.Paths.OutputDir = filepath.Join(base, "sorted")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Ledger.Path = filepath.Join(base, "state", "ledger.db")
	cfgVal.Extraction.TikaURL = "http://127.0.0.1:9"
	cfgVal.Workers.Count = 2
	cfgVal.Logging.RetentionDays = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTikaURL points extraction at a test server.
func WithTikaURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.TikaURL = url
	}
}

// WithWorkers sets the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers.Count = n
	}
}

// WithoutLedger disables the SQLite ledger.
func WithoutLedger() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithLanguages replaces the routing table.
func WithLanguages(table map[string]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Routing.Languages = table
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}

// InboxDir returns the first input root of cfg.
func InboxDir(cfg *config.Config) string {
	return cfg.Paths.RootDirs[0]
}
