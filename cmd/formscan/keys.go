package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/model"
)

// NewKeysCmd creates the keys command.
func NewKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys MODEL_ID",
		Short: "List the keys a trained model learned to extract",
		Long: `Keys prints the key strings a trained model learned from its sample
documents, grouped by form cluster. A cluster is one form layout the
service recognized during training; its keys are the field labels the
model extracts from documents of that layout.

Examples:
  formscan keys daab1905-d321-4dc8-8316-13e4bdb0d834
  formscan keys daab1905-d321-4dc8-8316-13e4bdb0d834 --json`,
		Args: cobra.ExactArgs(1),
		RunE: runKeysCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the key clusters as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runKeysCmd executes the keys command.
func runKeysCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	id, err := model.NewModelID(args[0])
	if err != nil {
		return fmt.Errorf("invalid model ID %q: %w", args[0], err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	clusters, err := client.GetExtractedKeys(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch extracted keys: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(clusters)
	}

	if len(clusters) == 0 {
		fmt.Fprintln(out, "No keys learned yet.")
		return nil
	}

	for _, name := range clusters.ClusterNames() {
		fmt.Fprintf(out, "Cluster %s (%d keys)\n", name, len(clusters[name]))
		for _, key := range clusters[name] {
			fmt.Fprintf(out, "  %s\n", key)
		}
	}
	fmt.Fprintf(out, "\n%d keys in %d clusters\n", clusters.TotalKeys(), len(clusters))
	return nil
}
