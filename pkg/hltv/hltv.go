package hltv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/pkg/fetcher"
	"github.com/jmylchreest/hltvstats/pkg/table"
)

// ErrNoStatsTable is returned in strict mode when no table header matched
// the stats heuristic.
var ErrNoStatsTable = fmt.Errorf("%w: no table matched the stats header heuristic", table.ErrEmptyExtraction)

// Report is the outcome of one scrape.
type Report struct {
	URL           string
	Title         string
	FetchedAt     time.Time
	FetchDuration time.Duration

	TableIndex int  // index of the extracted table among all tables
	TableCount int  // number of tables on the page
	Heuristic  bool // false when the fallback table was used

	Result table.Result
}

// Scraper renders a stats page and extracts its player table.
type Scraper struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// New creates a Scraper. A fetcher must be supplied with WithFetcher.
func New(opts ...Option) (*Scraper, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.Fetcher == nil {
		return nil, errors.New("hltv: no fetcher configured")
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.MinRows < 1 {
		o.MinRows = 1
	}

	return &Scraper{fetcher: o.Fetcher, opts: o}, nil
}

// Run validates cfg, builds its URL and scrapes it.
func (s *Scraper) Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	return s.Scrape(ctx, BuildURL(cfg, s.opts.Now()))
}

// Scrape fetches targetURL and extracts the player stats table.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (Report, error) {
	report := Report{URL: targetURL}

	logger.Info("fetching", "url", targetURL, "fetcher", s.fetcher.Type())
	start := time.Now()
	content, err := s.fetcher.Fetch(ctx, targetURL, s.opts.FetchOptions)
	report.FetchDuration = time.Since(start)
	report.FetchedAt = content.FetchedAt
	report.Title = content.Title
	if err != nil {
		if !errors.Is(err, fetcher.ErrNavigation) {
			err = fmt.Errorf("%w: %w", fetcher.ErrNavigation, err)
		}
		return report, err
	}
	logger.Debug("page fetched",
		"title", content.Title,
		"html_size", len(content.HTML),
		"duration", report.FetchDuration)

	doc, err := content.Document()
	if err != nil {
		return report, fmt.Errorf("%w: %w", table.ErrEmptyExtraction, err)
	}

	match, ok := table.Locate(doc)
	if !ok {
		return report, fmt.Errorf("%w: no tables on page", table.ErrEmptyExtraction)
	}
	report.TableIndex = match.Index
	report.TableCount = match.Total
	report.Heuristic = match.Heuristic

	if !match.Heuristic {
		if s.opts.Strict {
			return report, ErrNoStatsTable
		}
		logger.Warn("no table matched the stats headers, using the first table",
			"tables", match.Total)
	}
	logger.Debug("table located", "index", match.Index, "tables", match.Total)

	res, err := table.Extract(match.Table)
	if err != nil {
		return report, err
	}
	if len(res.Rows) < s.opts.MinRows {
		return report, fmt.Errorf("%w: %d rows, want at least %d",
			table.ErrEmptyExtraction, len(res.Rows), s.opts.MinRows)
	}

	report.Result = res
	logger.Debug("table extracted", "columns", len(res.Headers), "rows", len(res.Rows))
	return report, nil
}

// Close releases the fetcher.
func (s *Scraper) Close() error {
	return s.fetcher.Close()
}
