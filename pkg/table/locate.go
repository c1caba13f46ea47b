package table

import "strings"

// Match is the table chosen by Locate.
type Match struct {
	Table     Element
	Index     int  // position among all tables in document order
	Total     int  // number of tables in the document
	Heuristic bool // false when the first table was taken as a fallback
}

// Locate picks the statistics table out of every table in doc.
//
// The first table whose header signature mentions "player" together with
// "rating" or "k/d" wins. Without such a table the first table is returned
// with Heuristic unset. It reports false only when doc has no tables.
func Locate(doc Element) (Match, bool) {
	if doc == nil {
		return Match{}, false
	}

	tables := doc.QueryAll("table")
	if len(tables) == 0 {
		return Match{}, false
	}

	for i, t := range tables {
		if isStatsHeader(headerSignature(t)) {
			return Match{Table: t, Index: i, Total: len(tables), Heuristic: true}, true
		}
	}

	return Match{Table: tables[0], Index: 0, Total: len(tables)}, true
}

// headerSignature joins the lower-cased header texts of t with single spaces.
func headerSignature(t Element) string {
	cells := t.QueryAll("thead th")
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strings.ToLower(c.Text())
	}
	return strings.Join(parts, " ")
}

func isStatsHeader(sig string) bool {
	return strings.Contains(sig, "player") &&
		(strings.Contains(sig, "rating") || strings.Contains(sig, "k/d"))
}
