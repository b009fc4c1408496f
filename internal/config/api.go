package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/concall/pkg/formatting"
	"github.com/JaimeStill/concall/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CONCALL_CORS_ENABLED",
	Origins:          "CONCALL_CORS_ORIGINS",
	AllowedMethods:   "CONCALL_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CONCALL_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CONCALL_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CONCALL_CORS_MAX_AGE",
}

const (
	EnvAPIBasePath      = "CONCALL_API_BASE_PATH"
	EnvAPIMaxUploadSize = "CONCALL_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxJSONSize   = "CONCALL_API_MAX_JSON_SIZE"
)

// APIConfig holds API routing, body limits, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	MaxJSONSize   string                `toml:"max_json_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// MaxJSONSizeBytes returns MaxJSONSize in bytes.
func (c *APIConfig) MaxJSONSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxJSONSize)
	if err != nil {
		return 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.MaxJSONSize != "" {
		c.MaxJSONSize = overlay.MaxJSONSize
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
	if c.MaxJSONSize == "" {
		c.MaxJSONSize = "1MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIMaxJSONSize); v != "" {
		c.MaxJSONSize = v
	}
}

func (c *APIConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if _, err := formatting.ParseBytes(c.MaxJSONSize); err != nil {
		return fmt.Errorf("invalid max_json_size: %w", err)
	}
	return nil
}
