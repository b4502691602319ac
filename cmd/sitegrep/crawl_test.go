package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/sitegrep/internal/config"
	"github.com/nao1215/sitegrep/internal/log"
	"github.com/nao1215/sitegrep/internal/report"
)

// newTestSite serves a small site:
//
//	/          -> /a.html, /b.html, /logo.png
//	/a.html    -> /c.html        (contains the needle)
//	/b.html    -> /             (cycle)
//	/c.html    -> nothing        (contains the needle)
func newTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/":       `<html><body><p>home page</p><a href="/a.html">a</a><a href="/b.html">b</a><a href="/logo.png">logo</a></body></html>`,
		"/a.html": `<html><body><p>page a has the needle inside</p><a href="c.html">c</a></body></html>`,
		"/b.html": `<html><body><p>page b</p><a href="/">home</a></body></html>`,
		"/c.html": `<html><body><p>deep needle</p></body></html>`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// emptyConfig writes an empty config file so tests never pick up a
// .sitegrep from the working or home directory.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("sites: {}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCrawlCommand_Trace(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	base := srv.URL

	t.Run("depth 1 visits seed and its children in link order", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			base+"/", "1", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "In " + base + "/\n" +
			"In " + base + "/a.html\n" +
			"page a has the needle inside c\n" +
			"In " + base + "/b.html\n"
		if stdout != want {
			t.Errorf("unexpected trace\ngot:\n%s\nwant:\n%s", stdout, want)
		}
	})

	t.Run("depth 2 reaches grandchildren once", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			base+"/", "2", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "In " + base + "/\n" +
			"In " + base + "/a.html\n" +
			"page a has the needle inside c\n" +
			"In " + base + "/c.html\n" +
			"deep needle\n" +
			"In " + base + "/b.html\n"
		if stdout != want {
			t.Errorf("unexpected trace\ngot:\n%s\nwant:\n%s", stdout, want)
		}
	})

	t.Run("no match still exits cleanly", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			base+"/", "1", "absent text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(stdout, "In ") != 3 {
			t.Errorf("expected three visited pages, got:\n%s", stdout)
		}
	})

	t.Run("unreachable seed is not an error", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			base+"/missing.html", "1", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
	})

	t.Run("concurrent crawl visits the same pages", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			"-c", "4", base+"/", "2", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range []string{"/", "/a.html", "/b.html", "/c.html"} {
			if n := strings.Count(stdout, "In "+base+p+"\n"); n != 1 {
				t.Errorf("expected %s once, got %d times", p, n)
			}
		}
	})
}

func TestCrawlCommand_Reports(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)

	t.Run("json report follows the trace", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			"--json", srv.URL+"/", "1", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		idx := strings.Index(stdout, "{")
		if idx < 0 {
			t.Fatalf("expected JSON after trace, got %s", stdout)
		}
		var doc report.JSONReport
		if err := json.Unmarshal([]byte(stdout[idx:]), &doc); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if doc.Summary.PagesVisited != 3 || doc.Summary.MatchCount != 1 {
			t.Errorf("unexpected summary: %+v", doc.Summary)
		}
	})

	t.Run("markdown report goes to file", func(t *testing.T) {
		t.Parallel()

		reportPath := filepath.Join(t.TempDir(), "out", "report.md")
		stdout, _, err := executeRoot(t, "--config", emptyConfig(t), "--db-dir", t.TempDir(),
			"-m", "-o", reportPath, srv.URL+"/", "1", "needle")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, "sitegrep Report") {
			t.Error("expected report not to be written to stdout")
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "page a has the needle inside") {
			t.Errorf("expected match in report, got:\n%s", content)
		}
	})
}

func TestCrawlCommand_SaveAndHistory(t *testing.T) {
	t.Parallel()

	srv := newTestSite(t)
	dbDir := t.TempDir()
	cfgPath := emptyConfig(t)

	_, stderr, err := executeRoot(t, "--config", cfgPath, "--db-dir", dbDir, "--save", srv.URL+"/", "2", "needle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "Saved as run 1") {
		t.Errorf("expected save message, got %q", stderr)
	}

	t.Run("history lists the run", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, srv.URL+"/") || !strings.Contains(stdout, `"needle"`) {
			t.Errorf("expected run in listing, got:\n%s", stdout)
		}
	})

	t.Run("history shows run details", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "history", "--db-dir", dbDir, "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "Pages Visited:  4") {
			t.Errorf("expected page count, got:\n%s", stdout)
		}
		if !strings.Contains(stdout, "deep needle") {
			t.Errorf("expected match context, got:\n%s", stdout)
		}
	})

	t.Run("history shows run as JSON", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeRoot(t, "history", "--db-dir", dbDir, "-j", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var doc report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if doc.Summary.MatchCount != 2 {
			t.Errorf("expected 2 matches, got %d", doc.Summary.MatchCount)
		}
	})

	t.Run("unknown run ID", func(t *testing.T) {
		t.Parallel()

		if _, _, err := executeRoot(t, "history", "--db-dir", dbDir, "42"); err == nil {
			t.Error("expected error for unknown run")
		}
	})
}

func TestHistoryCommand_EmptyDatabase(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()

	stdout, _, err := executeRoot(t, "history", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "No saved runs.\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	if _, err := os.Stat(filepath.Join(dbDir, "sitegrep.db")); !os.IsNotExist(err) {
		t.Error("expected history not to create a database")
	}
}

func TestHistoryCommand_InvalidArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric id", []string{"history", "abc"}},
		{"zero id", []string{"history", "0"}},
		{"json and markdown", []string{"history", "-j", "-m", "1"}},
		{"too many args", []string{"history", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append(tt.args, "--db-dir", t.TempDir())
			if _, _, err := executeRoot(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSiteDecorator(t *testing.T) {
	t.Parallel()

	file := &config.File{
		Defaults: config.SiteConfig{UserAgent: "Default/1.0"},
		Sites: map[string]config.SiteConfig{
			"private.example": {
				Cookie:  "session=abc",
				Headers: map[string]string{"Authorization": "Bearer t0ken"},
			},
		},
	}

	var logs bytes.Buffer
	decorate := siteDecorator(file, log.NewSecureLogger(&logs, true))

	t.Run("applies host settings", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://private.example:8443/page.html", nil)
		decorate(req)

		if got := req.Header.Get("Cookie"); got != "session=abc" {
			t.Errorf("expected cookie, got %q", got)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer t0ken" {
			t.Errorf("expected Authorization header, got %q", got)
		}
		if got := req.Header.Get("User-Agent"); got != "Default/1.0" {
			t.Errorf("expected default user agent, got %q", got)
		}
		if strings.Contains(logs.String(), "session=abc") {
			t.Errorf("expected cookie to be masked in logs: %s", logs.String())
		}
	})

	t.Run("other hosts only get defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://public.example/", nil)
		decorate(req)

		if req.Header.Get("Cookie") != "" {
			t.Error("expected no cookie for other host")
		}
		if got := req.Header.Get("User-Agent"); got != "Default/1.0" {
			t.Errorf("expected default user agent, got %q", got)
		}
	})
}

func TestCrawlCommand_SiteConfigReachesServer(t *testing.T) {
	t.Parallel()

	var (
		mu        sync.Mutex
		gotCookie string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotCookie = r.Header.Get("Cookie")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<p>members only needle</p>")
	}))
	t.Cleanup(srv.Close)

	cfgPath := filepath.Join(t.TempDir(), ".sitegrep")
	content := "sites:\n  127.0.0.1:\n    cookie: \"member=1\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	stdout, _, err := executeRoot(t, "--config", cfgPath, "--db-dir", t.TempDir(), srv.URL+"/", "1", "needle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotCookie != "member=1" {
		t.Errorf("expected cookie from config file, got %q", gotCookie)
	}
	if !strings.Contains(stdout, "members only needle") {
		t.Errorf("expected match, got %q", stdout)
	}
}
