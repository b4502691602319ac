package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitegrep/internal/model"
)

// JSONWriter outputs results as JSON, one document per Write.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
	version      string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the sitegrep version in the document.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONReport is the document written by JSONWriter.
type JSONReport struct {
	Version string        `json:"version,omitempty"`
	Summary Summary       `json:"summary"`
	Result  *model.Result `json:"result"`
}

// Write outputs the result wrapped in a JSONReport.
func (w *JSONWriter) Write(result *model.Result) (int, error) {
	return w.writeJSON(&JSONReport{
		Version: w.version,
		Summary: NewSummary(result),
		Result:  result,
	})
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
