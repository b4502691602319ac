package report

import (
	"io"
	"time"

	"github.com/nao1215/sitegrep/internal/model"
)

// Writer renders a finished crawl result.
type Writer interface {
	// Write outputs the result and returns the number of bytes written.
	Write(result *model.Result) (int, error)
}

// MultiWriter writes the same result to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write stops on the first error and returns the bytes written so far.
func (m *MultiWriter) Write(result *model.Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Summary holds the headline numbers of a run.
type Summary struct {
	PagesVisited int    `json:"pages_visited"`
	MatchCount   int    `json:"match_count"`
	DurationMS   int64  `json:"duration_ms"`
	Status       string `json:"status"`
}

// NewSummary computes the summary of result.
func NewSummary(result *model.Result) Summary {
	return Summary{
		PagesVisited: result.PageCount(),
		MatchCount:   result.MatchCount(),
		DurationMS:   result.Duration().Milliseconds(),
		Status:       statusText(result),
	}
}

func statusText(result *model.Result) string {
	if result.HasMatches() {
		return "found"
	}
	return "not found"
}

const dateLayout = "2006-01-02 15:04:05 MST"

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.String()
	}
	return d.Round(time.Millisecond).String()
}

// truncateString shortens s to maxLen runes, ending in "..." when cut.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
