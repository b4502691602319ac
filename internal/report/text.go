package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sitegrep/internal/database"
	"github.com/nao1215/sitegrep/internal/model"
)

const ruleWidth = 70

// TextWriter outputs plain text for the terminal.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs a run summary followed by every match and its context.
func (w *TextWriter) Write(result *model.Result) (int, error) {
	var sb strings.Builder

	rule(&sb, "=")
	fmt.Fprintf(&sb, "Run:            %s\n", result.ID)
	fmt.Fprintf(&sb, "Seed URL:       %s\n", result.SeedURL)
	fmt.Fprintf(&sb, "Search String:  %s\n", result.SearchString)
	fmt.Fprintf(&sb, "Max Depth:      %d\n", result.MaxDepth)
	fmt.Fprintf(&sb, "Started:        %s\n", result.StartedAt.Format(dateLayout))
	fmt.Fprintf(&sb, "Duration:       %s\n", formatDuration(result.Duration()))
	fmt.Fprintf(&sb, "Pages Visited:  %d\n", result.PageCount())
	fmt.Fprintf(&sb, "Pages Matched:  %d\n", result.MatchCount())
	rule(&sb, "=")

	if !result.HasMatches() {
		sb.WriteString("No matches.\n")
		return w.output.Write([]byte(sb.String()))
	}

	for i, m := range result.Matches {
		fmt.Fprintf(&sb, "[%d] %s (depth %d, chars %d-%d)\n", i+1, m.URL, m.Depth, m.Context.Start, m.Context.End)
		fmt.Fprintf(&sb, "    %s\n", m.Context.Text)
	}
	return w.output.Write([]byte(sb.String()))
}

// WriteRuns outputs one line per saved run, as listed by the history command.
func (w *TextWriter) WriteRuns(runs []database.RunRecord) (int, error) {
	if len(runs) == 0 {
		return io.WriteString(w.output, "No saved runs.\n")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-6s  %-23s  %5s  %5s  %7s  %s\n", "ID", "STARTED", "DEPTH", "PAGES", "MATCHES", "SEED / SEARCH")
	rule(&sb, "-")
	for _, r := range runs {
		fmt.Fprintf(&sb, "%-6d  %-23s  %5d  %5d  %7d  %s  %q\n",
			r.ID,
			r.StartedAt.Local().Format(dateLayout),
			r.MaxDepth,
			r.PagesVisited,
			r.MatchCount,
			truncateString(r.SeedURL, 60),
			r.SearchString,
		)
	}
	return w.output.Write([]byte(sb.String()))
}

func rule(sb *strings.Builder, ch string) {
	sb.WriteString(strings.Repeat(ch, ruleWidth))
	sb.WriteString("\n")
}
