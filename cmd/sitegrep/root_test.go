package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/sitegrep/internal/config"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cmd.Use, "sitegrep ") {
			t.Errorf("expected use to start with 'sitegrep', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		verbose := cmd.PersistentFlags().Lookup("verbose")
		if verbose == nil {
			t.Fatal("expected verbose flag")
		}
		if verbose.Shorthand != "v" || verbose.DefValue != "false" {
			t.Errorf("unexpected verbose flag: -%s default %s", verbose.Shorthand, verbose.DefValue)
		}
		for _, name := range []string{"config", "db-dir"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("expected persistent flag %q", name)
			}
		}
	})

	t.Run("has crawl flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			def       string
		}{
			{"timeout", "t", config.DefaultTimeout.String()},
			{"user-agent", "u", config.DefaultUserAgent},
			{"concurrency", "c", "1"},
			{"save", "s", "false"},
			{"json", "j", "false"},
			{"markdown", "m", "false"},
			{"output", "o", ""},
			{"max-body-size", "", "5242880"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected flag %q", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.def {
				t.Errorf("flag %q: expected default %q, got %q", tt.name, tt.def, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{"init": false, "history [run-id]": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Use]; ok {
				want[sub.Use] = true
			}
		}
		for use, found := range want {
			if !found {
				t.Errorf("expected %q subcommand", use)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

func TestRootCmd_Args(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{"no arguments", []string{}, nil, "accepts 3 arg(s)"},
		{"two arguments", []string{"https://example.com/", "1"}, nil, "accepts 3 arg(s)"},
		{"four arguments", []string{"https://example.com/", "1", "a", "b"}, nil, "accepts 3 arg(s)"},
		{"zero depth", []string{"https://example.com/", "0", "needle"}, config.ErrInvalidMaxDepth, ""},
		{"negative depth", []string{"https://example.com/", "-3", "needle"}, config.ErrInvalidMaxDepth, ""},
		{"multi-digit negative depth", []string{"https://example.com/", "-12", "needle"}, config.ErrInvalidMaxDepth, "got -12"},
		{"unknown shorthand flag", []string{"-z", "https://example.com/", "1", "needle"}, nil, "unknown shorthand flag"},
		{"non-numeric depth", []string{"https://example.com/", "deep", "needle"}, config.ErrInvalidMaxDepth, ""},
		{"empty search string", []string{"https://example.com/", "1", ""}, config.ErrEmptySearchString, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			cmd := NewRootCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(append(tt.args, "--db-dir", t.TempDir()))

			err := cmd.Execute()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %v", tt.wantMsg, err)
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no crawl output, got %q", stdout.String())
			}
		})
	}
}

func TestRootCmd_SubcommandNumericFlag(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"history", "-3", "--db-dir", t.TempDir()})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, config.ErrInvalidMaxDepth) {
		t.Errorf("expected a flag error for history, got %v", err)
	}
}

func TestRootCmd_ConflictingReports(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-j", "-m", "https://example.com/", "1", "needle"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrConflictingReportFormats) {
		t.Errorf("expected ErrConflictingReportFormats, got %v", err)
	}
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", "/nonexistent/.sitegrep", "https://example.com/", "1", "needle"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}
