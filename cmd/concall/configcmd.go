package main

import (
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const redacted = "[redacted]"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long:  "Load config.toml, any overlay, and environment overrides, then print the finalized configuration as TOML with secrets redacted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Provider.APIKey != "" {
			cfg.Provider.APIKey = redacted
		}
		if cfg.Archive.Storage.ConnectionString != "" {
			cfg.Archive.Storage.ConnectionString = redacted
		}

		enc := toml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndentTables(true)
		return enc.Encode(cfg)
	},
}
