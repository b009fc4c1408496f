package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	EnvHeartbeatEnabled  = "CONCALL_HEARTBEAT_ENABLED"
	EnvHeartbeatInterval = "CONCALL_HEARTBEAT_INTERVAL"
	EnvHeartbeatURL      = "CONCALL_HEARTBEAT_URL"
)

// HeartbeatConfig controls the periodic self health-check ping that keeps
// idle hosted instances awake. An empty URL targets the local /health route.
type HeartbeatConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"`
	URL      string `toml:"url"`
}

// IntervalDuration returns Interval as a time.Duration.
func (c *HeartbeatConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// Target returns the URL to ping, defaulting to the local health route on port.
func (c *HeartbeatConfig) Target(port int) string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("http://127.0.0.1:%d/health", port)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *HeartbeatConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *HeartbeatConfig) Merge(overlay *HeartbeatConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Interval != "" {
		c.Interval = overlay.Interval
	}
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
}

func (c *HeartbeatConfig) loadDefaults() {
	if c.Interval == "" {
		c.Interval = "10m"
	}
}

func (c *HeartbeatConfig) loadEnv() {
	if v := os.Getenv(EnvHeartbeatEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvHeartbeatInterval); v != "" {
		c.Interval = v
	}
	if v := os.Getenv(EnvHeartbeatURL); v != "" {
		c.URL = v
	}
}

func (c *HeartbeatConfig) validate() error {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("interval must be positive: %s", c.Interval)
	}
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url: %q", c.URL)
		}
	}
	return nil
}
