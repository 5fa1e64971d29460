package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [FILE]",
		Short: "List recorded analyses from the local history",
		Long: `History lists the analyses recorded by "formscan analyze", newest
first. With a FILE argument only analyses of that document are shown.
Use --id to print one recorded report in full.

Examples:
  formscan history
  formscan history invoice.pdf
  formscan history --id 3 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Print the recorded report with this ID in full")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().Bool("markdown", false, "Output the report as Markdown (with --id)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildLocalConfig(cmd)
	if err != nil {
		return err
	}

	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	hdb, err := openHistoryDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer hdb.Close()

	if id != 0 {
		return printRecordedReport(cmd, cfg, hdb, id)
	}

	var document string
	if len(args) == 1 {
		document = args[0]
	}

	analyses, err := hdb.ListAnalyses(cmd.Context(), document)
	if err != nil {
		return fmt.Errorf("failed to read analysis history: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyses)
	}

	if len(analyses) == 0 {
		fmt.Fprintln(out, "No recorded analyses. Run \"formscan analyze\" first.")
		return nil
	}

	fmt.Fprintf(out, "%-4s  %-19s  %-36s  %6s  %6s  %s\n",
		"ID", "ANALYZED", "MODEL ID", "FIELDS", "TABLES", "DOCUMENT")
	for _, meta := range analyses {
		status := meta.Document
		if meta.Failed {
			status += " (failed)"
		}
		fmt.Fprintf(out, "%-4d  %-19s  %-36s  %6d  %6d  %s\n",
			meta.ID,
			meta.AnalyzedAt.Format("2006-01-02 15:04:05"),
			meta.ModelID,
			meta.FieldCount,
			meta.TableCount,
			status,
		)
	}
	fmt.Fprintf(out, "\n%d recorded analyses\n", len(analyses))
	return nil
}

// printRecordedReport renders one stored report in the requested format.
func printRecordedReport(cmd *cobra.Command, cfg *config.Config, hdb *database.HistoryDB, id int64) error {
	rep, err := hdb.GetAnalysisByID(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read analysis %d: %w", id, err)
	}
	if rep == nil {
		return fmt.Errorf("no recorded analysis with ID %d", id)
	}

	writer := newReportWriter(cfg, cmd.OutOrStdout(), false)
	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
