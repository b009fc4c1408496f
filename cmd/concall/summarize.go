package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/concall/internal/jobs"
	"github.com/JaimeStill/concall/internal/provider"
	"github.com/JaimeStill/concall/internal/summaries"
	"github.com/JaimeStill/concall/internal/transcripts"
	"github.com/JaimeStill/concall/internal/workflow"
	"github.com/JaimeStill/concall/pkg/extract"
)

var (
	outputDir    string
	outputFormat string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <transcript.pdf>",
	Short: "Summarize a transcript PDF and write the report",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for the rendered report")
	summarizeCmd.Flags().StringVarP(&outputFormat, "format", "f", "pdf", "Report format: pdf, xlsx, json")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	render, ext, err := renderer(outputFormat)
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
	}

	extractor, err := extract.New(cfg.Extract, logger)
	if err != nil {
		return err
	}
	normalizer, err := summaries.NewNormalizer(cfg.Pipeline.GuidanceKeywords)
	if err != nil {
		return err
	}

	rt := &workflow.Runtime{
		Extractor:  extractor,
		Provider:   provider.New(&cfg.Provider, logger),
		Normalizer: normalizer,
		Summaries:  summaries.New(1, logger),
		Jobs:       jobs.New(1, logger),
		MaxChars:   cfg.Pipeline.MaxChars,
		Logger:     logger,
	}

	result, err := workflow.Run(cmd.Context(), rt, workflow.Input{
		RequestID: transcripts.NewRequestID(),
		PDF:       data,
		PageCount: pages,
	})
	if err != nil {
		failure := workflow.Classify(err)
		return fmt.Errorf("%s (%d): %w", failure.Message, failure.StatusCode, err)
	}

	if render == nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	rec, err := rt.Summaries.Find(cmd.Context(), result.Meta.SummaryID)
	if err != nil {
		return err
	}

	out, err := render(rec)
	if err != nil {
		return err
	}

	path := filepath.Join(outputDir, summaries.Filename(rec, ext))
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func renderer(format string) (func(summaries.Record) ([]byte, error), string, error) {
	switch format {
	case "pdf":
		return summaries.RenderPDF, "pdf", nil
	case "xlsx":
		return summaries.RenderXLSX, "xlsx", nil
	case "json":
		return nil, "json", nil
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}
