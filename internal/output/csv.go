package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/jmylchreest/hltvstats/pkg/table"
)

// utf8BOM helps spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SerializeCSV renders matrix as comma-separated text.
//
// A cell is quoted only when it contains a double quote, comma, carriage
// return or line feed; inner quotes are doubled. Rows end with "\n",
// including the last one.
func SerializeCSV(matrix [][]string) string {
	var sb strings.Builder
	for i, row := range matrix {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeCSVRow(&sb, row)
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeCSVRow(sb *strings.Builder, row []string) {
	for j, cell := range row {
		if j > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(escapeCSV(cell))
	}
}

// escapeCSV quotes a single cell when required.
func escapeCSV(s string) string {
	if !strings.ContainsAny(s, "\",\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// CSVWriter writes an extraction result as CSV.
type CSVWriter struct {
	w   *bufio.Writer
	bom bool
}

// NewCSVWriter creates a CSV writer. With bom set, the output starts with a
// UTF-8 byte order mark.
func NewCSVWriter(w io.Writer, bom bool) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w), bom: bom}
}

// Write serializes res with its headers as the first row.
func (w *CSVWriter) Write(res table.Result) error {
	if w.bom {
		if _, err := w.w.Write(utf8BOM); err != nil {
			return err
		}
	}
	if _, err := w.w.WriteString(SerializeCSV(res.Matrix())); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *CSVWriter) Close() error {
	return w.w.Flush()
}
