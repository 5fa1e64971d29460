package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/formapi"
	"github.com/formscan/formscan/internal/model"
)

// NewModelsCmd creates the models command with its subcommands.
func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage the custom extraction models in the account",
		Long: `Models lists and deletes the custom extraction models the account holds.
The service keeps a per-account model quota, so stale models from past
experiments are worth cleaning up.`,
	}

	cmd.AddCommand(newModelsListCmd())
	cmd.AddCommand(newModelsDeleteCmd())

	return cmd
}

// newModelsListCmd creates the models list subcommand.
func newModelsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models in the account",
		Long: `List prints every custom model in the account with its status and
timestamps. The listing is also mirrored into the local history
database so --local works offline.

Examples:
  formscan models list
  formscan models list --json
  formscan models list --local`,
		RunE: runModelsListCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the model list as JSON")
	cmd.Flags().Bool("local", false, "List the locally mirrored models without calling the service")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runModelsListCmd executes the models list subcommand.
func runModelsListCmd(cmd *cobra.Command, _ []string) error {
	local, err := cmd.Flags().GetBool("local")
	if err != nil {
		return err
	}

	if local {
		cfg, err := buildLocalConfig(cmd)
		if err != nil {
			return err
		}
		return listLocalModels(cmd, cfg)
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	out := cmd.OutOrStdout()

	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	list, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	mirrorModels(ctx, cfg, logger, list)

	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list.Models) == 0 {
		fmt.Fprintln(out, "No models in the account.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-8s  %-19s  %s\n", "MODEL ID", "STATUS", "CREATED", "UPDATED")
	for _, m := range list.Models {
		fmt.Fprintf(out, "%-36s  %-8s  %-19s  %s\n",
			m.ModelID,
			m.Status,
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.UpdatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	if list.Limit > 0 {
		fmt.Fprintf(out, "\n%d models (quota %d)\n", list.Count, list.Limit)
	} else {
		fmt.Fprintf(out, "\n%d models\n", list.Count)
	}
	return nil
}

// listLocalModels prints the model mirror kept in the history database.
func listLocalModels(cmd *cobra.Command, cfg *config.Config) error {
	hdb, err := openHistoryDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer hdb.Close()

	stored, err := hdb.ListStoredModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read local model mirror: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stored)
	}

	if len(stored) == 0 {
		fmt.Fprintln(out, "No locally mirrored models. Run \"formscan models list\" first.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-8s  %-19s  %s\n", "MODEL ID", "STATUS", "CREATED", "RECORDED")
	for _, m := range stored {
		fmt.Fprintf(out, "%-36s  %-8s  %-19s  %s\n",
			m.ModelID,
			m.Status,
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			m.RecordedAt.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Fprintf(out, "\n%d models (local mirror)\n", len(stored))
	return nil
}

// mirrorModels refreshes the local model mirror. The mirror is a
// convenience, so failures are logged rather than returned.
func mirrorModels(ctx context.Context, cfg *config.Config, logger *slog.Logger, list *model.ModelList) {
	hdb, err := openHistoryDB(cfg)
	if err != nil {
		logger.Warn("history database unavailable, skipping model mirror", "error", err)
		return
	}
	defer func() {
		if err := hdb.Close(); err != nil {
			logger.Warn("failed to close history database", "error", err)
		}
	}()

	if err := hdb.RecordModels(ctx, list); err != nil {
		logger.Warn("failed to refresh model mirror", "error", err)
	}
}

// newModelsDeleteCmd creates the models delete subcommand.
func newModelsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [MODEL_ID]",
		Short: "Delete a model from the account",
		Long: `Delete removes a model from the account. Deletion is permanent; the
model must be retrained from its sample documents to get it back, so
the command asks for confirmation unless --force is given.

With --all-ready every model in the ready state is deleted, which is
useful for cleaning up after repeated demo runs.

Examples:
  formscan models delete daab1905-d321-4dc8-8316-13e4bdb0d834
  formscan models delete daab1905-d321-4dc8-8316-13e4bdb0d834 --force
  formscan models delete --all-ready --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: runModelsDeleteCmd,
	}

	cmd.Flags().BoolP("force", "f", false, "Delete without asking for confirmation")
	cmd.Flags().Bool("all-ready", false, "Delete every model in the ready state")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	return cmd
}

// runModelsDeleteCmd executes the models delete subcommand.
func runModelsDeleteCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	allReady, err := cmd.Flags().GetBool("all-ready")
	if err != nil {
		return err
	}

	if allReady == (len(args) == 1) {
		return fmt.Errorf("specify either a MODEL_ID or --all-ready")
	}

	logger := setupLogger(cmd, cfg.Verbose)
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	var targets []model.ModelID
	if allReady {
		list, err := client.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("failed to list models: %w", err)
		}
		for _, m := range list.Models {
			if m.Status.Usable() {
				targets = append(targets, m.ModelID)
			}
		}
		if len(targets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No ready models to delete.")
			return nil
		}
	} else {
		id, err := model.NewModelID(args[0])
		if err != nil {
			return fmt.Errorf("invalid model ID %q: %w", args[0], err)
		}
		targets = []model.ModelID{id}
	}

	if !force && !confirmDeletion(cmd, len(targets)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	for _, id := range targets {
		if err := deleteModel(ctx, cmd, cfg, client, id); err != nil {
			return err
		}
	}
	return nil
}

// deleteModel deletes one model from the service and the local mirror.
func deleteModel(ctx context.Context, cmd *cobra.Command, cfg *config.Config, client *formapi.Client, id model.ModelID) error {
	if err := client.DeleteModel(ctx, id); err != nil {
		return fmt.Errorf("failed to delete model %s: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted model %s\n", id)

	// Keep the local mirror in sync. Not fatal if it fails.
	if hdb, err := openHistoryDB(cfg); err == nil {
		_ = hdb.DeleteStoredModel(ctx, id.String())
		_ = hdb.Close()
	}
	return nil
}

// confirmDeletion asks the user to confirm a destructive operation.
func confirmDeletion(cmd *cobra.Command, count int) bool {
	if count == 1 {
		fmt.Fprint(cmd.OutOrStdout(), "Delete this model permanently? [y/N]: ")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete %d models permanently? [y/N]: ", count)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
