// Package fetcher defines the interface for rendering a stats page.
// Implement the Fetcher interface to plug in a different browser or HTTP
// backend; the table extraction only needs the returned HTML.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/hltvstats/pkg/table"
)

// Fetcher abstracts page rendering strategies.
type Fetcher interface {
	// Fetch retrieves and, where supported, renders the page at url.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type (e.g., "static", "dynamic").
	Type() string
}

// Options controls fetching behavior.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional settle time after load
	Headers         map[string]string

	// Browser emulation, ignored by the static fetcher.
	Viewport Viewport
	Locale   string // e.g. "en-US"
	Timezone string // IANA name, e.g. "Europe/Bucharest"
}

// Viewport is the emulated window size.
type Viewport struct {
	Width  int64
	Height int64
}

// Content represents fetched page data.
type Content struct {
	URL         string // requested URL
	FinalURL    string // URL after redirects; base for relative links
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Document parses the fetched HTML, resolving links against the final URL.
func (c Content) Document() (*table.Document, error) {
	base := c.FinalURL
	if base == "" {
		base = c.URL
	}
	return table.NewDocumentFromString(c.HTML, base)
}

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrNavigation).
var (
	// ErrNavigation indicates the page could not be loaded or settled.
	ErrNavigation = errors.New("navigation failed")
	// ErrAntiBot indicates the site's anti-bot protection blocked the request.
	ErrAntiBot = fmt.Errorf("%w: anti-bot protection detected", ErrNavigation)
	// ErrChallengeTimeout indicates the page did not settle before the deadline.
	ErrChallengeTimeout = fmt.Errorf("%w: challenge timeout", ErrNavigation)
)

// DefaultUserAgent mimics a desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// DefaultHeaders are sent with every stats page request.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9,ru;q=0.8",
		"Referer":         "https://www.hltv.org/stats",
	}
}

// DetectChallenge checks if the page content indicates a challenge/CAPTCHA page.
// It returns the challenge type, or "" for a regular page.
func DetectChallenge(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	// Cloudflare challenges
	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(titleLower, "attention required") ||
		strings.Contains(htmlLower, "cf-challenge") ||
		strings.Contains(htmlLower, "cf_chl_opt") {
		return "cloudflare"
	}

	// Cloudflare Turnstile
	if strings.Contains(htmlLower, "challenges.cloudflare.com/turnstile") ||
		strings.Contains(htmlLower, "cf-turnstile") {
		return "cloudflare-turnstile"
	}

	if strings.Contains(htmlLower, "hcaptcha.com") ||
		strings.Contains(htmlLower, "h-captcha") {
		return "hcaptcha"
	}

	if strings.Contains(htmlLower, "google.com/recaptcha") ||
		strings.Contains(htmlLower, "g-recaptcha") {
		return "recaptcha"
	}

	if strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "bot detection") ||
		strings.Contains(htmlLower, "robot or human") {
		return "anti-bot"
	}

	return ""
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
