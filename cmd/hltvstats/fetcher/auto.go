package fetcher

import (
	"context"
	"errors"
	"strings"

	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/pkg/fetcher"
)

// AutoFetcher tries a plain HTTP fetch first and only renders in the
// browser when the response cannot contain the stats table.
type AutoFetcher struct {
	static  fetcher.Fetcher
	dynamic fetcher.Fetcher
}

// NewAutoFetcher combines a static and a dynamic fetcher.
func NewAutoFetcher(static, dynamic fetcher.Fetcher) *AutoFetcher {
	return &AutoFetcher{static: static, dynamic: dynamic}
}

// Fetch tries static first, then falls back to dynamic if needed.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts fetcher.Options) (fetcher.Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		if ctx.Err() != nil {
			return content, err
		}
		logger.Info("static fetch failed, rendering in browser", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	if reason := NeedsBrowser(content.HTML); reason != "" {
		logger.Info("static response is incomplete, rendering in browser", "url", url, "reason", reason)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	logger.Debug("static response is sufficient", "url", url)
	return content, nil
}

// NeedsBrowser reports why html cannot be used without rendering, or ""
// when it already contains a table.
func NeedsBrowser(html string) string {
	lower := strings.ToLower(html)

	if !strings.Contains(lower, "<table") {
		// Client-rendered shells
		spaMarkers := []string{
			`<div id="root"></div>`,
			`<div id="app"></div>`,
			`<div id="__next"></div>`,
			`<div id="__nuxt"></div>`,
			"<app-root></app-root>",
			"data-reactroot",
		}
		for _, marker := range spaMarkers {
			if strings.Contains(lower, marker) {
				return "javascript application shell"
			}
		}

		if noscript := extractBetween(lower, "<noscript>", "</noscript>"); noscript != "" {
			for _, word := range []string{"javascript", "enable", "browser"} {
				if strings.Contains(noscript, word) {
					return "page requires javascript"
				}
			}
		}
		return "no table in response"
	}

	return ""
}

// extractBetween extracts content between two markers.
func extractBetween(s, start, end string) string {
	startIdx := strings.Index(s, start)
	if startIdx == -1 {
		return ""
	}
	startIdx += len(start)

	endIdx := strings.Index(s[startIdx:], end)
	if endIdx == -1 {
		return ""
	}

	return s[startIdx : startIdx+endIdx]
}

// Close releases both fetchers.
func (f *AutoFetcher) Close() error {
	return errors.Join(f.static.Close(), f.dynamic.Close())
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}
