package config

const (
	defaultConfigPath            = "~/.config/lingosort/config.toml"
	defaultOutputDir             = "~/lingosort/sorted"
	defaultLogDir                = "~/.local/share/lingosort/logs"
	defaultLedgerPath            = "~/.local/share/lingosort/ledger.db"
	defaultWindowWords           = 40
	defaultClassifierBackend     = BackendWhatlang
	defaultClassifierSeed        = 42
	defaultTikaURL               = "http://localhost:9998"
	defaultExtractionTimeout     = 120
	defaultLLMBaseURL            = "https://api.openai.com/v1"
	defaultLLMModel              = "gpt-4o-mini"
	defaultLLMTimeoutSeconds     = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 30
	defaultLedgerEnabled         = true
	defaultExtractionRateLimitHz = 0
)

// Classifier backends.
const (
	BackendWhatlang = "whatlang"
	BackendLLM      = "llm"
)

func defaultExtensions() []string {
	return []string{".pdf", ".doc", ".docx", ".rtf"}
}

func defaultPlainExtensions() []string {
	return []string{".txt", ".md"}
}

func defaultLanguages() map[string]string {
	return map[string]string{
		"he": "hebrew",
		"en": "english",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Scan: Scan{
			Extensions: defaultExtensions(),
		},
		Sampling: Sampling{
			WindowWords: defaultWindowWords,
		},
		Classifier: Classifier{
			Backend: defaultClassifierBackend,
			Seed:    defaultClassifierSeed,
		},
		Routing: Routing{
			Languages: defaultLanguages(),
		},
		Extraction: Extraction{
			TikaURL:           defaultTikaURL,
			TimeoutSeconds:    defaultExtractionTimeout,
			RequestsPerSecond: defaultExtractionRateLimitHz,
			PlainExtensions:   defaultPlainExtensions(),
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Ledger: Ledger{
			Enabled: defaultLedgerEnabled,
			Path:    defaultLedgerPath,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RunLogs:       true,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
