package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/hltvstats/pkg/table"
)

// JSONWriter writes the result as a single {"headers", "rows"} object.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
}

// NewJSONWriter creates a JSON writer. An empty indent writes compact JSON.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w), indent: indent}
}

// Write encodes res.
func (w *JSONWriter) Write(res table.Result) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(res); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON arrays: the headers first,
// then one line per row.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write encodes every matrix row on its own line.
func (w *JSONLWriter) Write(res table.Result) error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	for _, row := range res.Matrix() {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
