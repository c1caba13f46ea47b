package hltv

import (
	"time"

	"github.com/jmylchreest/hltvstats/pkg/fetcher"
)

// Options holds run settings for a Scraper.
type Options struct {
	Fetcher      fetcher.Fetcher
	FetchOptions fetcher.Options

	// MinRows is the fewest data rows accepted from the located table.
	MinRows int
	// Strict rejects the first-table fallback when no header matched.
	Strict bool

	// Now is the clock used to derive the date window.
	Now func() time.Time
}

// DefaultFetchOptions mirrors a desktop browser in Bucharest.
func DefaultFetchOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:       fetcher.DefaultUserAgent,
		Timeout:         45 * time.Second,
		WaitForSelector: "table",
		WaitDuration:    1500 * time.Millisecond,
		Headers:         fetcher.DefaultHeaders(),
		Viewport:        fetcher.Viewport{Width: 1366, Height: 768},
		Locale:          "en-US",
		Timezone:        "Europe/Bucharest",
	}
}

// DefaultOptions returns sensible defaults. No fetcher is set.
func DefaultOptions() Options {
	return Options{
		FetchOptions: DefaultFetchOptions(),
		MinRows:      1,
		Now:          time.Now,
	}
}

// Option configures a Scraper.
type Option func(*Options)

// WithFetcher sets the render backend.
func WithFetcher(f fetcher.Fetcher) Option {
	return func(o *Options) {
		o.Fetcher = f
	}
}

// WithFetchOptions replaces the per-request fetch options.
func WithFetchOptions(opts fetcher.Options) Option {
	return func(o *Options) {
		o.FetchOptions = opts
	}
}

// WithTimeout sets the render timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.FetchOptions.Timeout = d
	}
}

// WithMinRows sets the minimum number of rows for a successful extraction.
func WithMinRows(n int) Option {
	return func(o *Options) {
		o.MinRows = n
	}
}

// WithStrict enables failing when only the fallback table is available.
func WithStrict(enabled bool) Option {
	return func(o *Options) {
		o.Strict = enabled
	}
}

// WithClock overrides the clock used for date windows.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}
