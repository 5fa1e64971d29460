package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
)

//go:embed templates/formscan.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new formscan configuration file",
		Long: `Initialize creates a new .formscan configuration file in the current directory.

The generated file includes:
- Commented defaults for timeouts and training poll cadence
- The batch size for concurrent analyze uploads
- Documentation for all available options

Credentials stay out of the file; set FORMSCAN_ENDPOINT and
FORMSCAN_API_KEY in the environment.

Examples:
  # Create .formscan in current directory
  formscan init

  # Create config file at a specific path
  formscan init -o myconfig.yaml

  # Force overwrite existing file
  formscan init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/formscan.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Request timeout and training poll cadence")
	fmt.Fprintln(out, "  - Concurrent upload batch size")
	fmt.Fprintln(out, "  - History database location")
	fmt.Fprintln(out, "\nSet FORMSCAN_ENDPOINT and FORMSCAN_API_KEY in the environment.")

	return nil
}
