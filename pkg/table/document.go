// Package table locates a statistics table inside a rendered HTML document
// and extracts its header and rows as plain strings.
//
// The locator and extractor only depend on the Element interface, so any
// DOM backend can drive them. NewDocument provides the goquery-backed
// implementation used by the fetchers.
package table

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a read-only view over one node of a rendered document.
type Element interface {
	// QueryAll returns every descendant matching the CSS selector, in document order.
	QueryAll(selector string) []Element

	// Text returns the visible text of the element, whitespace-collapsed and trimmed.
	Text() string

	// LinkTarget returns the absolute href of the element when it is a link.
	LinkTarget() (string, bool)
}

// Document is a parsed HTML page. It is itself the root Element.
type Document struct {
	node
}

// NewDocument parses HTML from r. baseURL is used to resolve relative
// link targets and may be empty.
func NewDocument(r io.Reader, baseURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
	}

	// Hidden content never shows up in rendered text.
	doc.Find("script, style, noscript, template").Remove()

	return &Document{node{sel: doc.Selection, base: base}}, nil
}

// NewDocumentFromString is a convenience wrapper around NewDocument.
func NewDocumentFromString(html, baseURL string) (*Document, error) {
	return NewDocument(strings.NewReader(html), baseURL)
}

// node adapts a single-node goquery selection to Element.
type node struct {
	sel  *goquery.Selection
	base *url.URL
}

func (n node) QueryAll(selector string) []Element {
	found := n.sel.Find(selector)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		out = append(out, node{sel: s, base: n.base})
	})
	return out
}

func (n node) Text() string {
	return cleanText(n.sel.Text())
}

func (n node) LinkTarget() (string, bool) {
	href, ok := n.sel.Attr("href")
	if !ok {
		return "", false
	}
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	link, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !link.IsAbs() && n.base != nil {
		link = n.base.ResolveReference(link)
	}
	return link.String(), true
}

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
