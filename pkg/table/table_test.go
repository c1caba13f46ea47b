package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const baseURL = "https://www.hltv.org/stats/players"

// readTestdata reads a file from the testdata directory
func readTestdata(t *testing.T, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	return string(data)
}

func mustDocument(t *testing.T, html string) *Document {
	t.Helper()
	doc, err := NewDocumentFromString(html, baseURL)
	if err != nil {
		t.Fatalf("NewDocumentFromString() error = %v", err)
	}
	return doc
}

// tableHTML builds a table with the given header texts and rows of cell HTML.
func tableHTML(id string, headers []string, rows ...[]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<table id=%q>`, id)
	if len(headers) > 0 {
		sb.WriteString("<thead><tr>")
		for _, h := range headers {
			fmt.Fprintf(&sb, "<th>%s</th>", h)
		}
		sb.WriteString("</tr></thead>")
	}
	sb.WriteString("<tbody>")
	for _, row := range rows {
		sb.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&sb, "<td>%s</td>", cell)
		}
		sb.WriteString("</tr>")
	}
	sb.WriteString("</tbody></table>")
	return sb.String()
}

func page(tables ...string) string {
	return "<html><body>" + strings.Join(tables, "\n") + "</body></html>"
}

// --- Document Tests ---

func TestDocument_TextCollapsesWhitespace(t *testing.T) {
	doc := mustDocument(t, page(`<p>  s1mple
		<span>NAVI</span>  </p>`))

	ps := doc.QueryAll("p")
	if len(ps) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(ps))
	}
	if got := ps[0].Text(); got != "s1mple NAVI" {
		t.Errorf("Text() = %q, want %q", got, "s1mple NAVI")
	}
}

func TestDocument_TextSkipsScripts(t *testing.T) {
	doc := mustDocument(t, page(`<div>visible<script>var hidden = 1;</script></div>`))

	if got := doc.QueryAll("div")[0].Text(); got != "visible" {
		t.Errorf("Text() = %q, want %q", got, "visible")
	}
}

func TestDocument_LinkTarget(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{"relative", `<a href="/player/7998/s1mple">x</a>`, "https://www.hltv.org/player/7998/s1mple", true},
		{"absolute", `<a href="https://example.com/player/1/a">x</a>`, "https://example.com/player/1/a", true},
		{"dot relative", `<a href="../player/1/a">x</a>`, "https://www.hltv.org/player/1/a", true},
		{"no href", `<a>x</a>`, "", false},
		{"empty href", `<a href="  ">x</a>`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDocument(t, page(tt.html))
			got, ok := doc.QueryAll("a")[0].LinkTarget()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LinkTarget() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDocument_LinkTargetWithoutBase(t *testing.T) {
	doc, err := NewDocumentFromString(page(`<a href="/player/1/a">x</a>`), "")
	if err != nil {
		t.Fatalf("NewDocumentFromString() error = %v", err)
	}

	got, ok := doc.QueryAll("a")[0].LinkTarget()
	if !ok || got != "/player/1/a" {
		t.Errorf("LinkTarget() = (%q, %v), want unresolved href", got, ok)
	}
}

func TestNewDocument_InvalidBaseURL(t *testing.T) {
	_, err := NewDocumentFromString(page(""), "://bad")
	if err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

// --- Locate Tests ---

func TestLocate_MatchAtAnyPosition(t *testing.T) {
	stats := tableHTML("stats", []string{"Player", "Team", "Rating"}, []string{"a", "b", "c"})
	others := []string{
		tableHTML("nav", nil, []string{"Matches", "Results"}),
		tableHTML("teams", []string{"Team", "Points"}, []string{"NAVI", "900"}),
		tableHTML("events", []string{"Event", "Prize"}, []string{"Major", "$1M"}),
	}

	for pos := 0; pos <= len(others); pos++ {
		t.Run(fmt.Sprintf("position %d", pos), func(t *testing.T) {
			tables := append([]string{}, others[:pos]...)
			tables = append(tables, stats)
			tables = append(tables, others[pos:]...)

			m, ok := Locate(mustDocument(t, page(tables...)))
			if !ok {
				t.Fatal("Locate() found nothing")
			}
			if !m.Heuristic {
				t.Error("expected heuristic match")
			}
			if m.Index != pos {
				t.Errorf("Index = %d, want %d", m.Index, pos)
			}
			if m.Total != len(tables) {
				t.Errorf("Total = %d, want %d", m.Total, len(tables))
			}
			if got := headerSignature(m.Table); got != "player team rating" {
				t.Errorf("located table signature = %q", got)
			}
		})
	}
}

func TestLocate_KDHeaderMatches(t *testing.T) {
	doc := mustDocument(t, page(
		tableHTML("other", []string{"Player", "Maps"}),
		tableHTML("kd", []string{"PLAYER", "K/D"}),
	))

	m, ok := Locate(doc)
	if !ok || !m.Heuristic || m.Index != 1 {
		t.Errorf("Locate() = %+v, %v; want heuristic match at index 1", m, ok)
	}
}

func TestLocate_FirstMatchWins(t *testing.T) {
	doc := mustDocument(t, page(
		tableHTML("a", []string{"Team"}),
		tableHTML("b", []string{"Player", "Rating 2.0"}),
		tableHTML("c", []string{"Player", "K/D"}),
	))

	m, _ := Locate(doc)
	if m.Index != 1 {
		t.Errorf("Index = %d, want 1", m.Index)
	}
}

func TestLocate_RequiresPlayerTerm(t *testing.T) {
	doc := mustDocument(t, page(
		tableHTML("first", []string{"Team", "Points"}),
		tableHTML("second", []string{"Team", "Rating", "K/D"}),
	))

	m, ok := Locate(doc)
	if !ok {
		t.Fatal("Locate() found nothing")
	}
	if m.Heuristic {
		t.Error("expected fallback, got heuristic match")
	}
	if m.Index != 0 {
		t.Errorf("Index = %d, want fallback to first table", m.Index)
	}
}

func TestLocate_FallbackToFirstTable(t *testing.T) {
	doc := mustDocument(t, page(
		tableHTML("layout", nil, []string{"x"}),
		tableHTML("players", []string{"Player", "Maps"}),
	))

	m, ok := Locate(doc)
	if !ok {
		t.Fatal("Locate() found nothing")
	}
	if m.Heuristic || m.Index != 0 {
		t.Errorf("Locate() = %+v, want fallback to index 0", m)
	}
}

func TestLocate_NoTables(t *testing.T) {
	if _, ok := Locate(mustDocument(t, page("<p>Just a moment...</p>"))); ok {
		t.Error("expected no match for page without tables")
	}
}

func TestLocate_NilDocument(t *testing.T) {
	if _, ok := Locate(nil); ok {
		t.Error("expected no match for nil document")
	}
}

func TestLocate_Fixture(t *testing.T) {
	doc := mustDocument(t, readTestdata(t, "players.html"))

	m, ok := Locate(doc)
	if !ok {
		t.Fatal("Locate() found nothing")
	}
	if m.Index != 2 || m.Total != 3 || !m.Heuristic {
		t.Errorf("Locate() = {Index:%d Total:%d Heuristic:%v}, want {2 3 true}", m.Index, m.Total, m.Heuristic)
	}
}

// --- Extract Tests ---

func TestExtract_Scenario(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Rank", "Player", "Team", "Rating"},
		[]string{"1", `<a href="https://www.hltv.org/player/7998/s1mple">s1mple</a>`, "NAVI", "1.35"},
	)))

	m, _ := Locate(doc)
	res, err := Extract(m.Table)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := Result{
		Headers: []string{"Rank", "Player", "Player URL", "Team", "Rating"},
		Rows:    [][]string{{"1", "s1mple", "https://www.hltv.org/player/7998/s1mple", "NAVI", "1.35"}},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Fixture(t *testing.T) {
	doc := mustDocument(t, readTestdata(t, "players.html"))
	m, _ := Locate(doc)

	res, err := Extract(m.Table)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantHeaders := []string{"Player", "Player URL", "Team", "Maps", "Rounds", "K-D Diff", "K/D", "Rating 2.0"}
	if diff := cmp.Diff(wantHeaders, res.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}

	// The spacer row carries no cells and is skipped.
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}

	wantURLs := []string{"", "https://www.hltv.org/player/11893/zywoo", ""}
	for i, row := range res.Rows {
		if len(row) != len(res.Headers) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(res.Headers))
		}
		if row[1] != wantURLs[i] {
			t.Errorf("row %d Player URL = %q, want %q", i, row[1], wantURLs[i])
		}
	}

	if res.Rows[0][0] != "s1mple" {
		t.Errorf("first player = %q, want s1mple", res.Rows[0][0])
	}
}

func TestExtract_PlayerURLFromAnyCell(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Player", "Team", "Rating"},
		[]string{"s1mple", "NAVI", `<a href="/player/7998/s1mple">profile</a>`},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := res.Rows[0][1]; got != "https://www.hltv.org/player/7998/s1mple" {
		t.Errorf("Player URL = %q", got)
	}
}

func TestExtract_FirstPlayerLinkWins(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Player", "Opponent"},
		[]string{`<a href="/team/1/x">x</a><a href="/player/1/first">a</a>`, `<a href="/player/2/second">b</a>`},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := res.Rows[0][1]; got != "https://www.hltv.org/player/1/first" {
		t.Errorf("Player URL = %q, want first player link", got)
	}
}

func TestExtract_NoPlayerHeaderDefaultsToFirstColumn(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Nick", "Rating"},
		[]string{`<a href="/player/1/a">a</a>`, "1.10"},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := Result{
		Headers: []string{"Nick", "Player URL", "Rating"},
		Rows:    [][]string{{"a", "https://www.hltv.org/player/1/a", "1.10"}},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_MissingLinkYieldsEmptyCell(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Player", "Rating"},
		[]string{"anonymous", "0.99"},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff([]string{"anonymous", "", "0.99"}, res.Rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_RaggedRowsNormalized(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Player", "Team", "Rating"},
		[]string{"short"},
		[]string{"long", "NAVI", "1.0", "extra"},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := [][]string{
		{"short", "", "", ""},
		{"long", "", "NAVI", "1.0"},
	}
	if diff := cmp.Diff(want, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_DuplicateHeadersKept(t *testing.T) {
	doc := mustDocument(t, page(tableHTML("stats",
		[]string{"Player", "Rating", "Rating"},
		[]string{"a", "1", "2"},
	)))

	res, err := Extract(doc.QueryAll("table")[0])
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Player", "Player URL", "Rating", "Rating"}, res.Headers); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_RowLengthInvariant(t *testing.T) {
	headerSets := [][]string{
		{"Player"},
		{"Rank", "Player", "Team", "Rating"},
		{"A", "B", "C", "D", "E", "Player"},
	}

	for _, headers := range headerSets {
		rows := [][]string{
			make([]string, len(headers)),
			make([]string, len(headers)+2),
			{"x"},
		}
		doc := mustDocument(t, page(tableHTML("t", headers, rows...)))

		res, err := Extract(doc.QueryAll("table")[0])
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}

		playerIdx := PlayerColumn(headers)
		if res.Headers[playerIdx+1] != PlayerURLHeader {
			t.Errorf("headers %v: %q not at index %d", headers, PlayerURLHeader, playerIdx+1)
		}
		if len(res.Headers) != len(headers)+1 {
			t.Errorf("headers %v: got %d final headers", headers, len(res.Headers))
		}
		for i, row := range res.Rows {
			if len(row) != len(res.Headers) {
				t.Errorf("headers %v: row %d has %d cells, want %d", headers, i, len(row), len(res.Headers))
			}
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no headers", tableHTML("t", nil, []string{"a", "b"})},
		{"no rows", tableHTML("t", []string{"Player", "Rating"})},
		{"only spacer rows", `<table><thead><tr><th>Player</th></tr></thead><tbody><tr></tr></tbody></table>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDocument(t, page(tt.html))
			_, err := Extract(doc.QueryAll("table")[0])
			if !errors.Is(err, ErrEmptyExtraction) {
				t.Errorf("Extract() error = %v, want ErrEmptyExtraction", err)
			}
		})
	}
}

func TestExtract_NilTable(t *testing.T) {
	if _, err := Extract(nil); !errors.Is(err, ErrEmptyExtraction) {
		t.Errorf("Extract(nil) error = %v, want ErrEmptyExtraction", err)
	}
}

// --- Result Tests ---

func TestResult_Matrix(t *testing.T) {
	res := Result{
		Headers: []string{"Player", "Player URL"},
		Rows:    [][]string{{"a", "u1"}, {"b", ""}},
	}

	want := [][]string{{"Player", "Player URL"}, {"a", "u1"}, {"b", ""}}
	if diff := cmp.Diff(want, res.Matrix()); diff != "" {
		t.Errorf("Matrix() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayerColumn(t *testing.T) {
	tests := []struct {
		headers []string
		want    int
	}{
		{[]string{"Rank", "Player", "Team"}, 1},
		{[]string{"PLAYER NAME"}, 0},
		{[]string{"Team", "Players", "Player"}, 1},
		{[]string{"Team", "Rating"}, 0},
		{nil, 0},
	}

	for _, tt := range tests {
		if got := PlayerColumn(tt.headers); got != tt.want {
			t.Errorf("PlayerColumn(%v) = %d, want %d", tt.headers, got, tt.want)
		}
	}
}
