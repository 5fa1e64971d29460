package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/formscan/formscan/internal/model"
	"github.com/formscan/formscan/internal/preflight"
)

// BatchAnalyzer analyzes multiple documents concurrently with a bounded
// number of in-flight requests. Results keep the order of the inputs.
type BatchAnalyzer struct {
	// client performs the analyze calls.
	client ServiceClient

	// checker runs the local preflight checks.
	checker *preflight.Checker

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchAnalyzer.
type BatchOption func(*BatchAnalyzer)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchAnalyzer) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchAnalyzer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchAnalyzer creates a BatchAnalyzer.
func NewBatchAnalyzer(client ServiceClient, checker *preflight.Checker, opts ...BatchOption) *BatchAnalyzer {
	b := &BatchAnalyzer{
		client:      client,
		checker:     checker,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Analyze runs every path through the model and returns one report per
// input, in input order. A failed document yields a report with its
// failure recorded rather than aborting the batch; only context
// cancellation stops the whole batch early.
func (b *BatchAnalyzer) Analyze(ctx context.Context, id model.ModelID, paths []string) ([]*model.AnalysisReport, error) {
	reports := make([]*model.AnalysisReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			b.logger.Debug("analyzing document", "document", path)

			report, err := AnalyzeDocument(ctx, b.client, b.checker, id, path)
			if report == nil {
				// Preflight failure: the document never reached the
				// service. Record it as a failed report.
				report = &model.AnalysisReport{
					Document:     path,
					ModelID:      id,
					AnalyzedAt:   time.Now(),
					ErrorMessage: err.Error(),
				}
			}
			if err != nil {
				b.logger.Warn("document analysis failed", "document", path, "error", err)
			}

			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
