package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/concall/pkg/storage"
)

const EnvArchiveEnabled = "CONCALL_ARCHIVE_ENABLED"

var storageEnv = &storage.Env{
	ContainerName:    "CONCALL_ARCHIVE_CONTAINER_NAME",
	ConnectionString: "CONCALL_ARCHIVE_CONNECTION_STRING",
	Prefix:           "CONCALL_ARCHIVE_PREFIX",
}

// ArchiveConfig controls the optional blob archive of completed summaries.
type ArchiveConfig struct {
	Enabled bool           `toml:"enabled"`
	Storage storage.Config `toml:"storage"`
}

// Finalize applies environment overrides and finalizes storage settings when enabled.
func (c *ArchiveConfig) Finalize() error {
	if v := os.Getenv(EnvArchiveEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if !c.Enabled {
		return nil
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ArchiveConfig) Merge(overlay *ArchiveConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	c.Storage.Merge(&overlay.Storage)
}
