package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/model"
	"github.com/formscan/formscan/internal/pipeline"
)

// NewDemoCmd creates the demo command.
func NewDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full train/keys/analyze/list/delete walkthrough",
		Long: `Demo exercises the whole service surface in one run: it trains a model
from the labeled samples at --data-url, waits for training to finish,
lists the keys the model learned, analyzes the local --document, lists
the account's models, and finally deletes the model it created.

A failed step is logged and the run moves on to the next step, so one
service hiccup does not leave a half-finished walkthrough; in
particular the delete step still runs to clean up the trained model.

Examples:
  formscan demo --data-url "https://storage.example.com/samples?sig=..." --document invoice.pdf
  formscan demo --data-url "..." --document invoice.pdf --json`,
		RunE: runDemoCmd,
	}

	cmd.Flags().StringP("data-url", "u", "",
		"Cloud storage URL of the labeled training documents (required)")
	cmd.Flags().StringP("document", "d", "",
		"Local document to analyze with the freshly trained model (required)")
	cmd.Flags().Duration("poll-interval", config.DefaultPollInterval,
		"Delay between training status checks")
	cmd.Flags().Duration("poll-timeout", config.DefaultPollTimeout,
		"Maximum total time to wait for training")
	cmd.Flags().BoolP("json", "j", false, "Output the full run record as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .formscan in current or home directory)")

	if err := cmd.MarkFlagRequired("data-url"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("document"); err != nil {
		panic(err)
	}

	return cmd
}

// runDemoCmd executes the demo command.
func runDemoCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	dataURL, err := cmd.Flags().GetString("data-url")
	if err != nil {
		return err
	}
	document, err := cmd.Flags().GetString("document")
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

	p := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddSteps(
		pipeline.NewTrainStep(client, cfg.PollInterval, cfg.PollTimeout, logger),
		pipeline.NewKeysStep(client, logger),
		pipeline.NewAnalyzeStep(client, checker, logger),
		pipeline.NewListModelsStep(client, logger),
		pipeline.NewDeleteModelStep(client, logger),
	)

	run := model.NewDemoRun(dataURL, document)
	if err := p.Execute(ctx, run); err != nil {
		return fmt.Errorf("demo run aborted: %w", err)
	}

	out := cmd.OutOrStdout()
	if cfg.JSONReport {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			return err
		}
	} else {
		printDemoSummary(cmd, run)
	}

	if !run.Succeeded() {
		return fmt.Errorf("demo finished with %d failed steps", len(run.StepErrors))
	}
	return nil
}

// printDemoSummary renders a human-readable summary of the demo run.
func printDemoSummary(cmd *cobra.Command, run *model.DemoRun) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Demo run summary")
	fmt.Fprintln(out, "----------------")
	if !run.ModelID.IsZero() {
		fmt.Fprintf(out, "Model trained:   %s\n", run.ModelID)
	}
	if run.TrainResult != nil {
		fmt.Fprintf(out, "Training status: %s (%d documents succeeded)\n",
			run.TrainResult.ModelInfo.Status, run.TrainResult.SucceededDocuments())
	}
	if run.Keys != nil {
		fmt.Fprintf(out, "Keys learned:    %d keys in %d clusters\n",
			run.Keys.TotalKeys(), len(run.Keys))
	}
	if run.Analysis != nil {
		fmt.Fprintf(out, "Analysis:        %s: %d fields, %d tables on %d pages\n",
			run.Analysis.Document, run.Analysis.FieldCount(),
			run.Analysis.TableCount(), run.Analysis.PageCount())
	}
	if run.Models != nil {
		fmt.Fprintf(out, "Account models:  %d\n", run.Models.Count)
	}
	if run.ModelDeleted {
		fmt.Fprintln(out, "Model deleted:   yes")
	}

	fmt.Fprintf(out, "\nSteps performed: %d\n", len(run.PerformedSteps))
	for _, step := range run.PerformedSteps {
		if msg, failed := run.StepErrors[step]; failed {
			fmt.Fprintf(out, "  [fail] %-12s %s\n", step, msg)
		} else {
			fmt.Fprintf(out, "  [ ok ] %s\n", step)
		}
	}
}
