package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/model"
	"github.com/formscan/formscan/internal/pipeline"
	"github.com/formscan/formscan/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze MODEL_ID FILE...",
		Short: "Extract key/value pairs and tables from documents",
		Long: `Analyze uploads one or more local documents (PDF, JPEG, PNG, or TIFF)
to a trained model and prints the extracted key/value pairs and tables.

Before upload each document is checked locally: the format is sniffed
from magic bytes, oversized files are rejected, and image metadata is
scanned for GPS coordinates, serial numbers, and author tags worth
knowing about before sending the file to a cloud service.

With multiple files the uploads run concurrently; results are printed
in the order the files were given. Every analysis is recorded in the
local history database unless --no-save is set, so later runs can be
compared with "formscan compare".

Examples:
  formscan analyze daab1905-d321-4dc8-8316-13e4bdb0d834 invoice.pdf
  formscan analyze daab1905-d321-4dc8-8316-13e4bdb0d834 *.pdf --batch 8
  formscan analyze daab1905-d321-4dc8-8316-13e4bdb0d834 invoice.pdf --json -o result.json
  formscan analyze daab1905-d321-4dc8-8316-13e4bdb0d834 invoice.pdf --xlsx result.xlsx`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the analysis as JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output the analysis as Markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().String("xlsx", "", "Additionally export the analysis to this XLSX file")
	cmd.Flags().Bool("confidence", false, "Show per-field confidence scores in text output")
	cmd.Flags().Bool("no-save", false, "Do not record the analysis in the history database")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent uploads when analyzing multiple files")
	cmd.Flags().StringP("endpoint", "e", "", "Service endpoint URL (overrides FORMSCAN_ENDPOINT)")
	cmd.Flags().Duration("timeout", config.DefaultTimeout, "HTTP timeout per request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	id, err := model.NewModelID(args[0])
	if err != nil {
		return fmt.Errorf("invalid model ID %q: %w", args[0], err)
	}
	paths := args[1:]

	showConfidence, err := cmd.Flags().GetBool("confidence")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}
	checker := newPreflightChecker(cfg)

	ctx, cancel := signalContext(logger)
	defer cancel()

	var reports []*model.AnalysisReport
	if len(paths) == 1 {
		r, analyzeErr := pipeline.AnalyzeDocument(ctx, client, checker, id, paths[0])
		if r == nil {
			return fmt.Errorf("failed to analyze %s: %w", paths[0], analyzeErr)
		}
		reports = []*model.AnalysisReport{r}
	} else {
		analyzer := pipeline.NewBatchAnalyzer(client, checker,
			pipeline.WithConcurrency(cfg.BatchSize),
			pipeline.WithBatchLogger(logger),
		)
		reports, err = analyzer.Analyze(ctx, id, paths)
		if err != nil {
			return fmt.Errorf("batch analysis aborted: %w", err)
		}
	}

	if !cfg.NoSave {
		saveAnalyses(ctx, cfg, logger, reports)
	}

	output, closeOutput, err := reportDestination(cfg)
	if err != nil {
		return err
	}
	var writer report.Writer = newReportWriter(cfg, output, showConfidence)
	if cfg.ReportFile != "" {
		// Echo the report on stdout so the terminal still shows results.
		writer = report.NewMultiWriter(writer, newReportWriter(cfg, cmd.OutOrStdout(), showConfidence))
	}
	if _, err := writer.WriteBatch(reports); err != nil {
		_ = closeOutput()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeOutput(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if cfg.ReportFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", cfg.ReportFile)
	}

	if cfg.XLSXFile != "" {
		if err := exportXLSXFile(cfg.XLSXFile, reports); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "XLSX export written to %s\n", cfg.XLSXFile)
	}

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to analyze", failed, len(reports))
	}
	return nil
}

// saveAnalyses records analysis reports in the history database.
// History is a convenience, so failures are logged rather than returned.
func saveAnalyses(ctx context.Context, cfg *config.Config, logger *slog.Logger, reports []*model.AnalysisReport) {
	hdb, err := openHistoryDB(cfg)
	if err != nil {
		logger.Warn("history database unavailable, skipping save", "error", err)
		return
	}
	defer func() {
		if err := hdb.Close(); err != nil {
			logger.Warn("failed to close history database", "error", err)
		}
	}()

	for _, r := range reports {
		if _, err := hdb.InsertAnalysis(ctx, r); err != nil {
			logger.Warn("failed to record analysis", "document", r.Document, "error", err)
		}
	}
}

// exportXLSXFile writes the XLSX export of the reports to path.
func exportXLSXFile(path string, reports []*model.AnalysisReport) error {
	data, err := report.ExportXLSX(reports)
	if err != nil {
		return fmt.Errorf("failed to build XLSX export: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}
	return nil
}
