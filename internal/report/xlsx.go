package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/formscan/formscan/internal/model"
)

// ExportXLSX builds an XLSX workbook from the reports: a summary sheet
// with one row per document and a fields sheet with one row per
// extracted key/value pair.
func ExportXLSX(reports []*model.AnalysisReport) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, reports); err != nil {
		return nil, err
	}
	if err := writeFieldsSheet(f, reports); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSummarySheet writes one row per analyzed document.
func writeSummarySheet(f *excelize.File, reports []*model.AnalysisReport) error {
	const sheet = "Summary"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	headers := []string{"Document", "Model", "Analyzed", "Content Type", "Size (bytes)", "Pages", "Fields", "Tables", "Status"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	for i, r := range reports {
		status := "ok"
		if r.Failed() {
			status = "failed: " + r.ErrorMessage
		}
		analyzed := ""
		if !r.AnalyzedAt.IsZero() {
			analyzed = r.AnalyzedAt.Format("2006-01-02 15:04:05")
		}

		row := []any{
			r.Document,
			r.ModelID.String(),
			analyzed,
			r.ContentType,
			r.SizeBytes,
			r.PageCount(),
			r.FieldCount(),
			r.TableCount(),
			status,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 40) // document
	_ = f.SetColWidth(sheet, "B", "B", 38) // model
	_ = f.SetColWidth(sheet, "C", "D", 20)
	_ = f.SetColWidth(sheet, "I", "I", 40) // status
	return nil
}

// writeFieldsSheet writes one row per extracted field across documents.
func writeFieldsSheet(f *excelize.File, reports []*model.AnalysisReport) error {
	const sheet = "Fields"
	if err := ensureSheet(f, sheet); err != nil {
		return err
	}

	headers := []string{"Document", "Page", "Key", "Value", "Confidence"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return err
	}

	rowNum := 2
	for _, r := range reports {
		if r.Result == nil {
			continue
		}
		for _, page := range r.Result.Pages {
			for _, kv := range page.KeyValuePairs {
				row := []any{r.Document, page.Number, kv.Key, kv.Value, kv.Confidence}
				if err := writeRow(f, sheet, rowNum, row); err != nil {
					return err
				}
				rowNum++
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 40)
	_ = f.SetColWidth(sheet, "C", "C", 30)
	_ = f.SetColWidth(sheet, "D", "D", 48)
	return nil
}

// ensureSheet creates the sheet if needed and removes the default one.
func ensureSheet(f *excelize.File, sheet string) error {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	// excelize creates "Sheet1" by default; drop it once a real sheet exists.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 && sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}
	return nil
}

// writeHeaderRow writes the header cells on row 1.
func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes one data row at the given 1-based row number.
func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
