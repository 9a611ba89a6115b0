package loans

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/loeitech/booker/cmd/cli/config"
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

func TestHistory_TableOutput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := config.SaveSession(config.Session{ID: 7, Username: "alice", Role: "member"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	entries := []historyEntry{
		{ID: 1, BookTitle: "Dune", BookAuthor: "Frank Herbert", Status: "borrowed", DueDate: "2025-03-08T12:00:00Z"},
		{ID: 2, BookTitle: "Neuromancer", BookAuthor: "William Gibson", Status: "returned", DueDate: "2025-02-20T12:00:00Z", ReturnDate: "2025-02-18T09:30:00Z"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history/7" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(entries)
	}))
	defer srv.Close()

	t.Setenv("BOOKER_API_URL", srv.URL)

	cmd := historyCmd()

	out := captureOutput(t, func() {
		if err := cmd.RunE(cmd, []string{}); err != nil {
			t.Errorf("history: %v", err)
		}
	})

	if !strings.Contains(out, "Dune") || !strings.Contains(out, "Neuromancer") {
		t.Fatalf("expected book titles in output, got: %s", out)
	}
	if !strings.Contains(out, "2025-03-08") {
		t.Fatalf("expected formatted due date in output, got: %s", out)
	}
}

func TestHistory_NotLoggedIn(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := historyCmd()
	err := cmd.RunE(cmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "login") {
		t.Fatalf("expected login error, got: %v", err)
	}
}

func TestBorrowed_RequiresAdmin(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := config.SaveSession(config.Session{ID: 7, Username: "alice", Role: "member"}); err != nil {
		t.Fatalf("save session: %v", err)
	}

	cmd := borrowedCmd()
	err := cmd.RunE(cmd, []string{})
	if err == nil || !strings.Contains(err.Error(), "admin") {
		t.Fatalf("expected admin error, got: %v", err)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate("2025-03-08T12:00:00Z"); got != "2025-03-08" {
		t.Fatalf("formatDate: got %q", got)
	}
	if got := formatDate(""); got != "" {
		t.Fatalf("formatDate empty: got %q", got)
	}
	if got := formatDate("not-a-date"); got != "not-a-date" {
		t.Fatalf("formatDate passthrough: got %q", got)
	}
}
