package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/pkg/extract"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvConcallEnv             = "CONCALL_ENV"
	EnvConcallShutdownTimeout = "CONCALL_SHUTDOWN_TIMEOUT"
	EnvConcallVersion         = "CONCALL_VERSION"
	EnvConcallLogLevel        = "CONCALL_LOG_LEVEL"
)

var providerEnv = &provider.Env{
	BaseURL:         "CONCALL_PROVIDER_BASE_URL",
	APIKey:          "GEMINI_API_KEY",
	Model:           "MODEL_NAME",
	Timeout:         "CONCALL_PROVIDER_TIMEOUT",
	MaxOutputTokens: "CONCALL_PROVIDER_MAX_OUTPUT_TOKENS",
}

var extractEnv = &extract.Env{
	Secondary:  "CONCALL_EXTRACT_SECONDARY",
	MinChars:   "CONCALL_EXTRACT_MIN_CHARS",
	MinAlnum:   "CONCALL_EXTRACT_MIN_ALNUM",
	MaxPages:   "OCR_MAX_PAGES",
	DPI:        "OCR_DPI",
	Lang:       "OCR_LANG",
	PSM:        "CONCALL_OCR_PSM",
	Workers:    "CONCALL_OCR_WORKERS",
	Rasterizer: "CONCALL_OCR_RASTERIZER",
	Engine:     "CONCALL_OCR_ENGINE",
	Preprocess: "CONCALL_OCR_PREPROCESS",
}

// Config is the root configuration for the Concall service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	API             APIConfig       `toml:"api"`
	Provider        provider.Config `toml:"provider"`
	Extract         extract.Config  `toml:"extract"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	Archive         ArchiveConfig   `toml:"archive"`
	Heartbeat       HeartbeatConfig `toml:"heartbeat"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the CONCALL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvConcallEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	level.UnmarshalText([]byte(c.LogLevel))
	return level
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.Provider.Merge(&overlay.Provider)
	c.Extract.Merge(&overlay.Extract)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Archive.Merge(&overlay.Archive)
	c.Heartbeat.Merge(&overlay.Heartbeat)
}

// Finalize applies defaults, environment overrides, and validation to every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Provider.Finalize(providerEnv); err != nil {
		return fmt.Errorf("provider: %w", err)
	}
	if err := c.Extract.Finalize(extractEnv); err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Archive.Finalize(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Heartbeat.Finalize(); err != nil {
		return fmt.Errorf("heartbeat: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvConcallShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvConcallVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvConcallLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvConcallEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
