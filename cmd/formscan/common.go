package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/formscan/formscan/internal/config"
	"github.com/formscan/formscan/internal/database"
	"github.com/formscan/formscan/internal/formapi"
	"github.com/formscan/formscan/internal/log"
	"github.com/formscan/formscan/internal/preflight"
	"github.com/formscan/formscan/internal/report"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getLogJSONFlag retrieves the log-json flag from the command or its parent.
func getLogJSONFlag(cmd *cobra.Command) bool {
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		logJSON, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return logJSON
}

// setupLogger creates a redacting structured logger. The handler masks
// API keys and signed URLs so verbose logs stay safe to share.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if getLogJSONFlag(cmd) {
		return log.NewSecureJSONLogger(os.Stderr, verbose)
	}
	return log.NewSecureLogger(os.Stderr, verbose)
}

// buildConfig creates a Config from defaults, the environment, the
// optional .formscan file, and command flags, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// buildLocalConfig is buildConfig for commands that work purely against
// the local history database and need no service credentials.
func buildLocalConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil &&
		!errors.Is(err, config.ErrNoEndpoint) && !errors.Is(err, config.ErrNoAPIKey) {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// loadConfig merges defaults, environment, config file, and flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.DBDir = config.XDGDataDir()

	if f := cmd.Flags().Lookup("config"); f != nil {
		cfg.ConfigFilePath = f.Value.String()
	}

	// If the user explicitly named a config file, it must exist.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags win over everything. Only flags the command declares apply.
	var err error
	if f := cmd.Flags().Lookup("endpoint"); f != nil && f.Changed {
		cfg.Endpoint, err = cmd.Flags().GetString("endpoint")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("poll-interval"); f != nil && f.Changed {
		cfg.PollInterval, err = cmd.Flags().GetDuration("poll-interval")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("poll-timeout"); f != nil && f.Changed {
		cfg.PollTimeout, err = cmd.Flags().GetDuration("poll-timeout")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("batch"); f != nil && f.Changed {
		cfg.BatchSize, err = cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("json"); f != nil {
		cfg.JSONReport, err = cmd.Flags().GetBool("json")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("markdown"); f != nil {
		cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("output"); f != nil {
		cfg.ReportFile, err = cmd.Flags().GetString("output")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("xlsx"); f != nil {
		cfg.XLSXFile, err = cmd.Flags().GetString("xlsx")
		if err != nil {
			return nil, err
		}
	}
	if f := cmd.Flags().Lookup("no-save"); f != nil {
		cfg.NoSave, err = cmd.Flags().GetBool("no-save")
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// newPreflightChecker creates the local document checker with the
// configured upload size cap.
func newPreflightChecker(cfg *config.Config) *preflight.Checker {
	return preflight.NewChecker(preflight.WithMaxUploadSize(cfg.MaxUploadSize))
}

// newAPIClient creates the service client from the configuration.
func newAPIClient(cfg *config.Config, logger *slog.Logger) (*formapi.Client, error) {
	return formapi.New(cfg.Endpoint, cfg.APIKey,
		formapi.WithTimeout(cfg.Timeout),
		formapi.WithUserAgent(cfg.UserAgent),
		formapi.WithMaxBodySize(cfg.MaxBodySize),
		formapi.WithLogger(logger),
	)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// openHistoryDB opens the analysis history database. Failures are
// reported to the caller; analyze treats them as non-fatal.
func openHistoryDB(cfg *config.Config) (*database.HistoryDB, error) {
	return database.Open(cfg.DBDir, database.DefaultOptions())
}

// reportDestination opens the report output, stdout by default.
// The caller must call the returned closer.
func reportDestination(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// 0600: extracted form data can be sensitive
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter builds the report writer the flags ask for.
func newReportWriter(cfg *config.Config, output io.Writer, showConfidence bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		if showConfidence {
			return report.NewTextWriter(output, report.WithConfidence())
		}
		return report.NewTextWriter(output)
	}
}
