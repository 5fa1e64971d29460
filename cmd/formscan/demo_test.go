package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestNewDemoCmd tests the demo command creation.
func TestNewDemoCmd(t *testing.T) {
	t.Parallel()

	cmd := NewDemoCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "demo" {
			t.Errorf("expected use 'demo', got %q", cmd.Use)
		}
	})

	t.Run("has required flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("data-url") == nil {
			t.Error("expected data-url flag")
		}
		if cmd.Flags().Lookup("document") == nil {
			t.Error("expected document flag")
		}
	})
}

// newDemoServer serves every call of the demo walkthrough.
func newDemoServer(t *testing.T) (*httptest.Server, *map[string]int) {
	t.Helper()
	calls := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/formunderstanding/v2.0/custom/models":
			calls["train"]++
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"modelId": %q, "status": "creating"}`, testModelID)
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/keys"):
			calls["keys"]++
			fmt.Fprint(w, `{"clusters": {"0": ["Invoice No.", "Total"]}}`)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
			calls["analyze"]++
			fmt.Fprint(w, `{
				"status": "success",
				"pages": [{
					"number": 1,
					"keyValuePairs": [
						{"key": [{"text": "Total"}], "value": [{"text": "100.00"}], "confidence": 0.9}
					]
				}]
			}`)
		case r.Method == http.MethodGet && r.URL.Path == "/formunderstanding/v2.0/custom/models":
			calls["list"]++
			fmt.Fprintf(w, `{
				"modelsSummary": {"count": 1},
				"models": [{"modelId": %q, "status": "ready"}]
			}`, testModelID)
		case r.Method == http.MethodDelete:
			calls["delete"]++
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet:
			calls["status"]++
			fmt.Fprintf(w, `{"modelId": %q, "status": "ready"}`, testModelID)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// TestRunDemoCmd tests the demo command execution.
func TestRunDemoCmd(t *testing.T) {
	t.Run("runs the full walkthrough", func(t *testing.T) {
		srv, calls := newDemoServer(t)
		setTestCredentials(t, srv.URL)
		pdf := writeSamplePDF(t, "invoice.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{
			"demo",
			"--data-url", "https://storage.example.com/samples",
			"--document", pdf,
			"--poll-interval", "10ms",
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, step := range []string{"train", "keys", "analyze", "list", "delete"} {
			if (*calls)[step] == 0 {
				t.Errorf("expected %s call to reach the server", step)
			}
		}

		output := buf.String()
		if !strings.Contains(output, "Demo run summary") {
			t.Errorf("expected summary heading, got %q", output)
		}
		if !strings.Contains(output, testModelID) {
			t.Errorf("expected model ID in summary, got %q", output)
		}
		if !strings.Contains(output, "Model deleted:   yes") {
			t.Errorf("expected deletion in summary, got %q", output)
		}
	})

	t.Run("continues past a failed step", func(t *testing.T) {
		deleted := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/formunderstanding/v2.0/custom/models":
				w.WriteHeader(http.StatusCreated)
				fmt.Fprintf(w, `{"modelId": %q, "status": "ready"}`, testModelID)
			case strings.HasSuffix(r.URL.Path, "/keys"):
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"error": {"code": "2001", "message": "Server error."}}`)
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/analyze"):
				fmt.Fprint(w, `{"status": "success", "pages": [{"number": 1}]}`)
			case r.Method == http.MethodGet && r.URL.Path == "/formunderstanding/v2.0/custom/models":
				fmt.Fprint(w, `{"modelsSummary": {"count": 0}, "models": []}`)
			case r.Method == http.MethodDelete:
				deleted = true
				w.WriteHeader(http.StatusNoContent)
			default:
				fmt.Fprintf(w, `{"modelId": %q, "status": "ready"}`, testModelID)
			}
		}))
		t.Cleanup(srv.Close)
		setTestCredentials(t, srv.URL)
		pdf := writeSamplePDF(t, "invoice.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{
			"demo",
			"--data-url", "https://storage.example.com/samples",
			"--document", pdf,
			"--poll-interval", "10ms",
		})

		err := cmd.Execute()
		if err == nil {
			t.Fatal("expected error when a step fails")
		}
		if !strings.Contains(err.Error(), "1 failed steps") {
			t.Errorf("expected failed step count, got %v", err)
		}
		if !deleted {
			t.Error("expected delete step to run despite earlier failure")
		}
		if !strings.Contains(buf.String(), "[fail]") {
			t.Errorf("expected failed step marker, got %q", buf.String())
		}
	})

	t.Run("json output holds the run record", func(t *testing.T) {
		srv, _ := newDemoServer(t)
		setTestCredentials(t, srv.URL)
		pdf := writeSamplePDF(t, "invoice.pdf")

		var buf bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&buf)
		cmd.SetErr(&buf)
		cmd.SetArgs([]string{
			"demo",
			"--data-url", "https://storage.example.com/samples",
			"--document", pdf,
			"--poll-interval", "10ms",
			"--json",
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var run map[string]any
		if err := json.Unmarshal(buf.Bytes(), &run); err != nil {
			t.Fatalf("expected valid JSON run record: %v", err)
		}
		if run["model_id"] != testModelID {
			t.Errorf("expected model_id %q, got %v", testModelID, run["model_id"])
		}
		if run["model_deleted"] != true {
			t.Errorf("expected model_deleted true, got %v", run["model_deleted"])
		}
	})
}
