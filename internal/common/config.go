package common

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"`
	Targets     TargetsConfig    `toml:"targets"`
	Storage     StorageConfig    `toml:"storage"`
	Crawler     CrawlerConfig    `toml:"crawler"`
	Processing  ProcessingConfig `toml:"processing"`
	LLM         LLMConfig        `toml:"llm"`
	Logging     LoggingConfig    `toml:"logging"`
}

// TargetsConfig points at the directory of crawl target files (TOML, one per site)
type TargetsConfig struct {
	Dir string `toml:"dir"`
}

type StorageConfig struct {
	Badger     BadgerConfig     `toml:"badger"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

// FilesystemConfig holds the on-disk data areas: pending/accepted/rejected
// page records under Data, quarantined attachment bytes under Quarantine,
// packaged output packets under Output.
type FilesystemConfig struct {
	Data       string `toml:"data"`
	Quarantine string `toml:"quarantine"`
	Output     string `toml:"output"`
}

// CrawlerConfig contains fetch/extract pipeline configuration
type CrawlerConfig struct {
	UserAgent           string        `toml:"user_agent"`
	MaxConcurrency      int           `toml:"max_concurrency" validate:"gte=1"`
	RequestTimeout      time.Duration `toml:"request_timeout"`
	MaxBodySize         int64         `toml:"max_body_size"`
	BatchSize           int           `toml:"batch_size" validate:"gte=1"`
	ChunkSize           int           `toml:"chunk_size" validate:"gte=1"`
	ParseWorkers        int           `toml:"parse_workers" validate:"gte=1"`
	RetryAttempts       int           `toml:"retry_attempts" validate:"gte=1"`
	QueueLimit          int           `toml:"queue_limit" validate:"gte=1"`
	AllowedContentTypes []string      `toml:"allowed_content_types"`
}

// ProcessingConfig drives the validation pipeline
type ProcessingConfig struct {
	Enabled            bool    `toml:"enabled"`
	Schedule           string  `toml:"schedule"` // Cron schedule format
	Concurrency        int     `toml:"concurrency" validate:"gte=1"`
	RelevanceThreshold float64 `toml:"relevance_threshold" validate:"gte=0,lte=1"`
	AgentID            string  `toml:"agent_id"`
}

// LLMConfig selects and configures the relevance/enrichment provider
type LLMConfig struct {
	DefaultProvider string       `toml:"default_provider" validate:"oneof=gemini claude"`
	Gemini          GeminiConfig `toml:"gemini"`
	Claude          ClaudeConfig `toml:"claude"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// defaultParseWorkers sizes the HTML parse pool to the machine, capped so a
// large host does not starve the fetch side.
func defaultParseWorkers() int {
	n := runtime.NumCPU()
	if n > 12 {
		n = 12
	}
	if n < 1 {
		n = 1
	}
	return n
}

// NewDefaultConfig returns a configuration with defaults applied
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Targets: TargetsConfig{
			Dir: "./targets",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/venari.db",
				ResetOnStartup: false,
			},
			Filesystem: FilesystemConfig{
				Data:       "./data/crawled",
				Quarantine: "./data/quarantine",
				Output:     "./data/packets",
			},
		},
		Crawler: CrawlerConfig{
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			MaxConcurrency:      20,
			RequestTimeout:      30 * time.Second,
			MaxBodySize:         10 * 1024 * 1024,
			BatchSize:           20,
			ChunkSize:           10,
			ParseWorkers:        defaultParseWorkers(),
			RetryAttempts:       1,
			QueueLimit:          10000,
			AllowedContentTypes: []string{"text/html"},
		},
		Processing: ProcessingConfig{
			Enabled:            true,
			Schedule:           "@every 15s",
			Concurrency:        4,
			RelevanceThreshold: 0.6,
			AgentID:            "venari-worker-01",
		},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash",
				Timeout:     "60s",
				Temperature: 0.2,
			},
			Claude: ClaudeConfig{
				Model:       "claude-sonnet-4-20250514",
				Timeout:     "60s",
				Temperature: 0.2,
				MaxTokens:   8192,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadConfig loads configuration from an optional TOML file, applies
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VENARI_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if dir := os.Getenv("VENARI_TARGETS_DIR"); dir != "" {
		config.Targets.Dir = dir
	}
	if badgerPath := os.Getenv("VENARI_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if level := os.Getenv("VENARI_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if userAgent := os.Getenv("VENARI_CRAWLER_USER_AGENT"); userAgent != "" {
		config.Crawler.UserAgent = userAgent
	}
	if maxConcurrency := os.Getenv("VENARI_CRAWLER_MAX_CONCURRENCY"); maxConcurrency != "" {
		if v, err := strconv.Atoi(maxConcurrency); err == nil {
			config.Crawler.MaxConcurrency = v
		}
	}
	if workers := os.Getenv("VENARI_CRAWLER_PARSE_WORKERS"); workers != "" {
		if v, err := strconv.Atoi(workers); err == nil {
			config.Crawler.ParseWorkers = v
		}
	}
	if threshold := os.Getenv("VENARI_RELEVANCE_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Processing.RelevanceThreshold = v
		}
	}
	if provider := os.Getenv("VENARI_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	}
}
