package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/formscan/formscan/internal/model"
)

// TextWriter outputs reports as plain terminal text.
// This is the default output format of the analyze command.
type TextWriter struct {
	baseWriter

	// showConfidence includes per-field confidence in the output.
	showConfidence bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithConfidence includes the service's per-field confidence.
func WithConfidence() TextWriterOption {
	return func(w *TextWriter) {
		w.showConfidence = true
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one analysis report as text.
func (w *TextWriter) Write(report *model.AnalysisReport) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Document:  %s\n", report.Document)
	fmt.Fprintf(&b, "Model:     %s\n", report.ModelID)
	fmt.Fprintf(&b, "Type:      %s (%d bytes)\n", report.ContentType, report.SizeBytes)
	if !report.AnalyzedAt.IsZero() {
		fmt.Fprintf(&b, "Analyzed:  %s\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))
	}

	for _, warning := range report.PreflightWarnings {
		fmt.Fprintf(&b, "Warning:   %s\n", warning)
	}

	if report.Failed() {
		fmt.Fprintf(&b, "Status:    failed: %s\n", report.ErrorMessage)
		return w.output.Write([]byte(b.String()))
	}

	fmt.Fprintf(&b, "Status:    %s (%d fields, %d tables, %d pages)\n",
		report.Result.Status, report.FieldCount(), report.TableCount(), report.PageCount())

	for _, page := range report.Result.Pages {
		fmt.Fprintf(&b, "\nPage %d", page.Number)
		if page.ClusterID >= 0 {
			fmt.Fprintf(&b, " (cluster %d)", page.ClusterID)
		}
		b.WriteString("\n")

		for _, kv := range page.KeyValuePairs {
			if w.showConfidence {
				fmt.Fprintf(&b, "  %-30s %s (%.2f)\n", kv.Key, kv.Value, kv.Confidence)
			} else {
				fmt.Fprintf(&b, "  %-30s %s\n", kv.Key, kv.Value)
			}
		}

		for _, table := range page.Tables {
			fmt.Fprintf(&b, "  Table %s (%d columns, %d rows)\n", table.ID, len(table.Columns), table.Rows())
			for _, col := range table.Columns {
				fmt.Fprintf(&b, "    %s: %s\n", col.Header, strings.Join(col.Entries, " | "))
			}
		}
	}

	for _, msg := range report.Result.Errors {
		fmt.Fprintf(&b, "\nService error: %s\n", msg)
	}

	return w.output.Write([]byte(b.String()))
}

// WriteBatch outputs the reports separated by a rule, followed by a
// one-line batch summary.
func (w *TextWriter) WriteBatch(reports []*model.AnalysisReport) (int, error) {
	var total int
	failed := 0

	for i, report := range reports {
		if i > 0 {
			n, err := io.WriteString(w.output, "\n"+strings.Repeat("-", 60)+"\n\n")
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
		if report.Failed() {
			failed++
		}
	}

	if len(reports) > 1 {
		n, err := fmt.Fprintf(w.output, "\n%d documents analyzed, %d failed\n", len(reports), failed)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
