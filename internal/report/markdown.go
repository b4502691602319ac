package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/sitegrep/internal/model"
)

// MarkdownWriter outputs a result as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header table, match overview and one section per match.
func (w *MarkdownWriter) Write(result *model.Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeOverview(md, result)
	w.writeMatches(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.Result) {
	md.H1("sitegrep Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + result.ID + "`"},
			{"Seed URL", "`" + result.SeedURL + "`"},
			{"Search String", "`" + result.SearchString + "`"},
			{"Max Depth", strconv.Itoa(result.MaxDepth)},
			{"Started", result.StartedAt.Format(dateLayout)},
			{"Duration", formatDuration(result.Duration())},
			{"Pages Visited", strconv.Itoa(result.PageCount())},
			{"Pages Matched", strconv.Itoa(result.MatchCount())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeOverview(md *markdown.Markdown, result *model.Result) {
	if !result.HasMatches() {
		md.Tip("The search string was not found on any visited page.")
		md.PlainText("")
		return
	}

	md.Notef("Found on %d of %d visited page(s).", result.MatchCount(), result.PageCount())
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Matched", uint64(result.MatchCount()))
	if rest := result.PageCount() - result.MatchCount(); rest > 0 {
		chart.LabelAndIntValue("Not matched", uint64(rest))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	rows := make([][]string, len(result.Matches))
	for i, m := range result.Matches {
		rows[i] = []string{strconv.Itoa(i + 1), truncateString(m.URL, 80), strconv.Itoa(m.Depth)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "URL", "Depth"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeMatches(md *markdown.Markdown, result *model.Result) {
	if !result.HasMatches() {
		return
	}

	md.H2("Matches")
	md.PlainText("")

	for i, m := range result.Matches {
		md.H3(strconv.Itoa(i+1) + ". " + m.URL)
		md.PlainText("")
		md.PlainTextf("Depth %d, characters %d-%d", m.Depth, m.Context.Start, m.Context.End)
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("text"), m.Context.Text)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitegrep](https://github.com/nao1215/sitegrep)*")
}
