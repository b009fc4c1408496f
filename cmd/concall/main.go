// Command concall runs the transcript pipeline from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/concall/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "concall",
	Short: "Earnings-call transcript summarizer",
	Long: `concall extracts text from an earnings-call transcript PDF, asks the
configured model for a structured summary, and renders a report.

Configuration is read from config.toml, an optional config.<CONCALL_ENV>.toml
overlay, a .env file, and environment variables.

Examples:
  concall summarize q3.pdf                 # write Concall_Summary_<company>_<quarter>.pdf
  concall summarize q3.pdf -f xlsx -o out  # write a workbook into ./out
  concall summarize q3.pdf -f json         # print summary and meta as JSON
  concall config                           # show effective configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(configCmd)
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
