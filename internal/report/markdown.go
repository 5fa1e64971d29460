package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/formscan/formscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one analysis report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis Report")
	md.PlainText("")
	w.writeReport(md, report, 2)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteBatch outputs multiple analysis reports as one document.
func (w *MarkdownWriter) WriteBatch(reports []*model.AnalysisReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis Report")
	md.PlainText("")

	failed := 0
	for _, report := range reports {
		if report.Failed() {
			failed++
		}
	}
	md.PlainTextf("%d documents analyzed, %d failed", len(reports), failed)
	md.PlainText("")

	for _, report := range reports {
		md.H2(report.Document)
		md.PlainText("")
		w.writeReport(md, report, 3)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeReport writes one report's sections at the given heading level.
func (w *MarkdownWriter) writeReport(md *markdown.Markdown, report *model.AnalysisReport, level int) {
	w.writeHeader(md, report)

	if report.Failed() {
		md.Cautionf("Analysis failed: %s", report.ErrorMessage)
		md.PlainText("")
		return
	}

	for _, warning := range report.PreflightWarnings {
		md.Warningf("%s", warning)
	}
	if len(report.PreflightWarnings) > 0 {
		md.PlainText("")
	}

	for _, page := range report.Result.Pages {
		w.writePage(md, page, level)
	}

	for _, msg := range report.Result.Errors {
		md.Cautionf("Service error: %s", msg)
		md.PlainText("")
	}
}

// writeHeader writes the document info table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AnalysisReport) {
	rows := [][]string{
		{"Document", "`" + report.Document + "`"},
		{"Model", "`" + report.ModelID.String() + "`"},
		{"Content Type", report.ContentType},
		{"Size", strconv.FormatInt(report.SizeBytes, 10) + " bytes"},
	}
	if !report.AnalyzedAt.IsZero() {
		rows = append(rows, []string{"Analyzed", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if !report.Failed() {
		rows = append(rows,
			[]string{"Fields", strconv.Itoa(report.FieldCount())},
			[]string{"Tables", strconv.Itoa(report.TableCount())},
			[]string{"Pages", strconv.Itoa(report.PageCount())},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePage writes one page's fields and tables.
func (w *MarkdownWriter) writePage(md *markdown.Markdown, page model.Page, level int) {
	heading := "Page " + strconv.Itoa(page.Number)
	if page.ClusterID >= 0 {
		heading += " (cluster " + strconv.Itoa(page.ClusterID) + ")"
	}
	if level <= 2 {
		md.H2(heading)
	} else {
		md.H3(heading)
	}
	md.PlainText("")

	if len(page.KeyValuePairs) == 0 && len(page.Tables) == 0 {
		md.PlainText("Nothing extracted on this page.")
		md.PlainText("")
		return
	}

	if len(page.KeyValuePairs) > 0 {
		rows := make([][]string, len(page.KeyValuePairs))
		for i, kv := range page.KeyValuePairs {
			rows[i] = []string{
				truncateString(kv.Key, 60),
				truncateString(kv.Value, 80),
				strconv.FormatFloat(kv.Confidence, 'f', 2, 64),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Key", "Value", "Confidence"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	for _, table := range page.Tables {
		headers := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			headers[i] = col.Header
		}

		rows := make([][]string, table.Rows())
		for r := range rows {
			row := make([]string, len(table.Columns))
			for c, col := range table.Columns {
				if r < len(col.Entries) {
					row[c] = truncateString(col.Entries[r], 40)
				}
			}
			rows[r] = row
		}

		md.PlainTextf("Table `%s`:", table.ID)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: headers,
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [formscan](https://github.com/formscan/formscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
// Pipe characters are escaped so cell text cannot break the table.
func truncateString(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
