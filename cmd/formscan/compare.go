package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare FILE",
		Short: "Compare the two most recent analyses of a document",
		Long: `Compare diffs the two most recent recorded analyses of a document:
fields that appeared, fields that disappeared, and fields whose
extracted value changed between runs. Analyses are recorded by
"formscan analyze" unless --no-save was used.

Examples:
  formscan compare invoice.pdf
  formscan compare invoice.pdf --json`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the diff as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildLocalConfig(cmd)
	if err != nil {
		return err
	}
	document := args[0]

	hdb, err := openHistoryDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer hdb.Close()

	reports, err := hdb.LatestAnalyses(cmd.Context(), document, 2)
	if err != nil {
		return fmt.Errorf("failed to read analysis history: %w", err)
	}
	if len(reports) < 2 {
		return fmt.Errorf("need at least two recorded analyses of %s, found %d", document, len(reports))
	}

	// LatestAnalyses returns newest first.
	diff := report.Compare(reports[1], reports[0])

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(diff)
	}

	if _, err := diff.WriteText(out); err != nil {
		return fmt.Errorf("failed to write diff: %w", err)
	}
	return nil
}
