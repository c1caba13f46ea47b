package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	stats "github.com/jmylchreest/hltvstats/pkg/table"
)

// RenderPreview prints up to limit rows of res as a terminal table.
func RenderPreview(w io.Writer, res stats.Result, limit int) {
	if limit <= 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Headers))
	for i, h := range res.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	shown := res.Rows
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, r := range shown {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = cell
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(shown), len(res.Rows))
}
