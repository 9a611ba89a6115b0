package books

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

// captureOutput helps capture stdout during command execution.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String()
}

func TestListBooks_TableOutput(t *testing.T) {
	items := []book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Quantity: 3, StatusText: "Available"},
		{ID: 2, Title: "Neuromancer", Author: "William Gibson", Quantity: 0, StatusText: "Out of Stock"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	_ = os.Setenv("BOOKER_API_URL", srv.URL)
	defer os.Unsetenv("BOOKER_API_URL")

	cmd := listBooksCmd()

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, "Dune") || !strings.Contains(out, "Neuromancer") {
		t.Fatalf("expected book titles in output, got: %s", out)
	}
	if !strings.Contains(out, "Out of Stock") {
		t.Fatalf("expected status text in output, got: %s", out)
	}
}

func TestListBooks_JSONOutput(t *testing.T) {
	items := []book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert", Quantity: 3, StatusText: "Available"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer srv.Close()

	_ = os.Setenv("BOOKER_API_URL", srv.URL)
	defer os.Unsetenv("BOOKER_API_URL")

	cmd := listBooksCmd()
	_ = cmd.Flags().Set("json", "true")

	out := captureOutput(t, func() {
		cmd.Run(cmd, []string{})
	})

	if !strings.Contains(out, `"title": "Dune"`) {
		t.Fatalf("expected JSON output, got: %s", out)
	}
}
