package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for formscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formscan",
		Short: "Client for a cloud form-understanding service",
		Long: `formscan trains custom extraction models from labeled sample documents
stored in cloud storage, and uses them to pull key/value pairs and tables
out of forms (PDF, JPEG, PNG, TIFF).

Credentials come from the environment:
  FORMSCAN_ENDPOINT  base URL of the service
  FORMSCAN_API_KEY   subscription key

Run 'formscan demo' for an end-to-end tour: train, list keys, analyze,
list models, delete the demo model.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON lines")

	// Add subcommands
	cmd.AddCommand(NewTrainCmd())
	cmd.AddCommand(NewKeysCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewModelsCmd())
	cmd.AddCommand(NewDemoCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
