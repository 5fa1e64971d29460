package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/model"
)

// NewTrainCmd creates the train command.
func NewTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a custom extraction model from labeled sample documents",
		Long: `Train asks the service to learn a new extraction model from the labeled
sample documents stored under a cloud storage container URL. The URL must
be reachable by the service, typically a signed container URL.

Training is asynchronous: the service answers with a model ID in the
creating state. With --wait, formscan polls the model status until
training finishes and prints the per-document training results.

Examples:
  # Start training and return immediately
  formscan train --data-url "https://storage.example.com/samples?sig=..."

  # Train and wait for completion
  formscan train --data-url "https://storage.example.com/samples?sig=..." --wait

  # Custom poll cadence
  formscan train --data-url "..." --wait --poll-interval 10s --poll-timeout 30m`,
		RunE: runTrainCmd,
	}

	cmd.Flags().StringP("data-url", "u", "",
		"Cloud storage URL of the labeled training documents (required)")
	cmd.Flags().BoolP("wait", "w", false,
		"Poll until training reaches a terminal status")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"Delay between training status checks with --wait")
	cmd.Flags().Duration("poll-timeout", config.DefaultPollTimeout,
		"Maximum total time to wait for training with --wait")
	cmd.Flags().BoolP("json", "j", false,
		"Output the training result as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	if err := cmd.MarkFlagRequired("data-url"); err != nil {
		panic(err)
	}

	return cmd
}

// runTrainCmd executes the train command.
func runTrainCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	dataURL, err := cmd.Flags().GetString("data-url")
	if err != nil {
		return err
	}
	wait, err := cmd.Flags().GetBool("wait")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd, cfg.Verbose)
	client, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	result, err := client.Train(ctx, dataURL)
	if err != nil {
		return fmt.Errorf("training request failed: %w", err)
	}

	if wait && !result.ModelInfo.Status.IsTerminal() {
		fmt.Fprintf(cmd.OutOrStdout(), "Training model %s...\n", result.ModelInfo.ModelID)
		result, err = client.WaitForTraining(ctx, result.ModelInfo.ModelID, cfg.PollInterval, cfg.PollTimeout)
		if err != nil {
			if result != nil {
				printTrainResult(cmd, cfg, result)
			}
			return fmt.Errorf("training wait failed: %w", err)
		}
	}

	printTrainResult(cmd, cfg, result)

	if result.ModelInfo.Status == model.StatusInvalid {
		return errors.New("training finished with status invalid")
	}
	return nil
}

// printTrainResult renders a training result to the command output.
func printTrainResult(cmd *cobra.Command, cfg *config.Config, result *model.TrainResult) {
	out := cmd.OutOrStdout()

	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	fmt.Fprintf(out, "Model:   %s\n", result.ModelInfo.ModelID)
	fmt.Fprintf(out, "Status:  %s\n", result.ModelInfo.Status)
	if !result.ModelInfo.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Created: %s\n", result.ModelInfo.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}

	if len(result.TrainingDocuments) > 0 {
		fmt.Fprintf(out, "\nTraining documents (%d succeeded):\n", result.SucceededDocuments())
		for _, doc := range result.TrainingDocuments {
			fmt.Fprintf(out, "  %-30s %s (%d pages)\n", doc.Name, doc.Status, doc.Pages)
			for _, msg := range doc.Errors {
				fmt.Fprintf(out, "    error: %s\n", msg)
			}
		}
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(out, "Error: %s\n", msg)
	}
}
