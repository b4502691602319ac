package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/sitegrep/internal/config"
	"github.com/nao1215/sitegrep/internal/database"
	"github.com/nao1215/sitegrep/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is how many runs "history" lists by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show runs saved with --save",
		Long: `History lists the runs stored in the history database, newest first.

Given a run ID it prints that run's summary and every match with its
context, optionally as JSON or Markdown.

Examples:
  # List the 20 most recent runs
  sitegrep history

  # List every run
  sitegrep history -n 0

  # Show one run as Markdown
  sitegrep history -m 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().BoolP("json", "j", false,
		"Show the run as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Show the run as Markdown (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var runID int64
	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid run ID %q: must be a positive integer", args[0])
		}
		runID = id
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	out := cmd.OutOrStdout()
	text := report.NewTextWriter(out)

	dbDir := getDBDir(cmd)
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); os.IsNotExist(err) {
		if runID != 0 {
			return fmt.Errorf("%w: %d", database.ErrRunNotFound, runID)
		}
		_, err := text.WriteRuns(nil)
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if runID == 0 {
		runs, err := db.ListRuns(ctx, limit)
		if err != nil {
			return err
		}
		_, err = text.WriteRuns(runs)
		return err
	}

	result, err := db.LoadResult(ctx, runID)
	if err != nil {
		return err
	}

	var w report.Writer = text
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	}
	_, err = w.Write(result)
	return err
}
