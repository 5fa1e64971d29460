package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const analyzeBody = `{
	"status": "success",
	"pages": [
		{
			"number": 1,
			"clusterId": 0,
			"keyValuePairs": [
				{
					"key": [{"text": "Invoice"}, {"text": "No."}],
					"value": [{"text": "INV-42"}],
					"confidence": 0.97
				}
			],
			"tables": []
		}
	]
}`

// writeSamplePDF writes a minimal PDF file into a temp dir.
func writeSamplePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%test document\n"), 0600); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// TestNewAnalyzeCmd tests the analyze command creation.
func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "analyze MODEL_ID FILE..." {
			t.Errorf("unexpected use: %q", cmd.Use)
		}
	})

	t.Run("has report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output", "xlsx", "confidence", "no-save", "batch"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("json and markdown shorthands", func(t *testing.T) {
		t.Parallel()
		if f := cmd.Flags().Lookup("json"); f == nil || f.Shorthand != "j" {
			t.Error("expected json flag with shorthand 'j'")
		}
		if f := cmd.Flags().Lookup("markdown"); f == nil || f.Shorthand != "m" {
			t.Error("expected markdown flag with shorthand 'm'")
		}
	})
}

// TestRunAnalyzeCmd tests the analyze command execution.
func TestRunAnalyzeCmd(t *testing.T) {
	t.Run("analyzes a single document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wantPath := fmt.Sprintf("/formunderstanding/v2.0/custom/models/%s/analyze", testModelID)
			if r.URL.Path != wantPath {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("expected application/pdf, got %s", ct)
			}
			fmt.Fprint(w, analyzeBody)
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		configPath := writeDBConfig(t)
		pdf := writeSamplePDF(t, "invoice.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"analyze", testModelID, pdf, "--config", configPath})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Invoice No.") {
			t.Errorf("expected joined key text, got %q", output)
		}
		if !strings.Contains(output, "INV-42") {
			t.Errorf("expected extracted value, got %q", output)
		}
	})

	t.Run("rejects documents over the configured upload cap", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("document over the upload cap must not reach the service")
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		pdf := writeSamplePDF(t, "invoice.pdf")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, ".formscan")
		content := fmt.Sprintf("dbDir: %q\nmaxUploadSize: 4\n", filepath.Join(tmpDir, "db"))
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"analyze", testModelID, pdf, "--config", configPath})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected an error for an oversized document")
		}
		if !strings.Contains(err.Error(), "exceeds upload size limit") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("analyzes multiple documents in input order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, analyzeBody)
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		configPath := writeDBConfig(t)
		first := writeSamplePDF(t, "first.pdf")
		second := writeSamplePDF(t, "second.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"analyze", testModelID, first, second, "--config", configPath, "--no-save"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		iFirst := strings.Index(output, "first.pdf")
		iSecond := strings.Index(output, "second.pdf")
		if iFirst < 0 || iSecond < 0 {
			t.Fatalf("expected both documents in output, got %q", output)
		}
		if iFirst > iSecond {
			t.Error("expected reports in input order")
		}
		if !strings.Contains(output, "2 documents analyzed, 0 failed") {
			t.Errorf("expected batch summary, got %q", output)
		}
	})

	t.Run("writes xlsx export", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, analyzeBody)
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		configPath := writeDBConfig(t)
		pdf := writeSamplePDF(t, "invoice.pdf")
		xlsxPath := filepath.Join(t.TempDir(), "result.xlsx")

		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"analyze", testModelID, pdf,
			"--config", configPath, "--no-save", "--xlsx", xlsxPath,
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		f, err := excelize.OpenFile(xlsxPath)
		if err != nil {
			t.Fatalf("expected readable xlsx file: %v", err)
		}
		defer f.Close()
		rows, err := f.GetRows("Fields")
		if err != nil {
			t.Fatalf("expected Fields sheet: %v", err)
		}
		if len(rows) < 2 {
			t.Fatalf("expected field rows, got %d", len(rows))
		}
	})

	t.Run("writes report to output file", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, analyzeBody)
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		configPath := writeDBConfig(t)
		pdf := writeSamplePDF(t, "invoice.pdf")
		outPath := filepath.Join(t.TempDir(), "report.json")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{
			"analyze", testModelID, pdf,
			"--config", configPath, "--no-save", "--json", "-o", outPath,
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}
		if !strings.Contains(string(content), "INV-42") {
			t.Errorf("expected extracted value in report file, got %q", string(content))
		}
		if !strings.Contains(buf.String(), "INV-42") {
			t.Errorf("expected report echoed on stdout, got %q", buf.String())
		}
	})

	t.Run("rejects unrecognized file format", func(t *testing.T) {
		setTestCredentials(t, "https://example.com")
		path := filepath.Join(t.TempDir(), "notes.txt")
		if err := os.WriteFile(path, []byte("plain text"), 0600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		cmd := NewRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"analyze", testModelID, path, "--no-save"})

		if err := cmd.Execute(); err == nil {
			t.Fatal("expected error for unrecognized format")
		}
	})

	t.Run("reports service failures per document", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"code": "2005", "message": "Analysis failed."}}`)
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		configPath := writeDBConfig(t)
		first := writeSamplePDF(t, "first.pdf")
		second := writeSamplePDF(t, "second.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{"analyze", testModelID, first, second, "--config", configPath, "--no-save"})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error when documents fail")
		}
		if !strings.Contains(err.Error(), "2 of 2 documents failed") {
			t.Errorf("expected failure count in error, got %v", err)
		}
		if !strings.Contains(buf.String(), "Analysis failed") {
			t.Errorf("expected failure message in report, got %q", buf.String())
		}
	})
}
