package table

import (
	"errors"
	"fmt"
	"strings"
)

// PlayerURLHeader is the column injected next to the player name.
const PlayerURLHeader = "Player URL"

// playerLinkSelector matches profile links inside a row.
const playerLinkSelector = `a[href*="/player/"]`

// ErrEmptyExtraction indicates no usable table, header or row was found.
var ErrEmptyExtraction = errors.New("empty extraction")

// Result is an extracted table. Every row has len(Headers) cells.
// Header texts are not guaranteed to be unique.
type Result struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Matrix returns the headers followed by the rows.
func (r Result) Matrix() [][]string {
	m := make([][]string, 0, len(r.Rows)+1)
	m = append(m, r.Headers)
	return append(m, r.Rows...)
}

// Extract reads the header and body rows of t and injects the player
// profile URL as a column right after the player column.
func Extract(t Element) (Result, error) {
	if t == nil {
		return Result{}, fmt.Errorf("%w: no table", ErrEmptyExtraction)
	}

	headerCells := t.QueryAll("thead th")
	headers := make([]string, len(headerCells))
	for i, c := range headerCells {
		headers[i] = c.Text()
	}
	if len(headers) == 0 {
		return Result{}, fmt.Errorf("%w: table has no headers", ErrEmptyExtraction)
	}

	playerIdx := PlayerColumn(headers)

	var rows [][]string
	for _, tr := range t.QueryAll("tbody tr") {
		cells := tr.QueryAll("td")
		if len(cells) == 0 {
			continue
		}

		texts := make([]string, len(headers))
		for i := 0; i < len(cells) && i < len(headers); i++ {
			texts[i] = cells[i].Text()
		}

		rows = append(rows, insertAt(texts, playerIdx+1, playerURL(cells)))
	}
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("%w: table has no rows", ErrEmptyExtraction)
	}

	return Result{
		Headers: insertAt(headers, playerIdx+1, PlayerURLHeader),
		Rows:    rows,
	}, nil
}

// PlayerColumn returns the index of the first header mentioning "player",
// or 0 when none does.
func PlayerColumn(headers []string) int {
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), "player") {
			return i
		}
	}
	return 0
}

// playerURL returns the target of the first profile link found in cells.
func playerURL(cells []Element) string {
	for _, td := range cells {
		links := td.QueryAll(playerLinkSelector)
		if len(links) == 0 {
			continue
		}
		href, _ := links[0].LinkTarget()
		return href
	}
	return ""
}

// insertAt returns a copy of s with v inserted at position i.
func insertAt(s []string, i int, v string) []string {
	if i > len(s) {
		i = len(s)
	}
	out := make([]string, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}
