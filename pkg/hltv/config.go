// Package hltv builds HLTV player statistics URLs and turns the rendered
// stats page into a table.Result.
package hltv

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// BaseURL is the player statistics listing.
const BaseURL = "https://www.hltv.org/stats/players"

// DateLayout is the date format used in the stats query string.
const DateLayout = "2006-01-02"

// Mode selects how the target URL is obtained.
type Mode string

const (
	// ModeFixed uses Config.URL verbatim.
	ModeFixed Mode = "fixed"
	// ModeWindow derives the URL from a date window and filters.
	ModeWindow Mode = "window"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes which stats page to scrape. It is treated as an
// immutable value and passed by copy.
type Config struct {
	Mode Mode   `validate:"oneof=fixed window"`
	URL  string `validate:"omitempty,url"`

	// Window mode. A zero EndDate means "now".
	EndDate       time.Time
	LookbackDays  int    `validate:"gte=0"`
	Maps          string `validate:"required_if=Mode window"`
	RankingFilter string `validate:"required_if=Mode window"`
	Side          string `validate:"required_if=Mode window"`
}

// DefaultConfig returns the ancient T-side top 30 window over the last 92 days.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeWindow,
		LookbackDays:  92,
		Maps:          "de_ancient",
		RankingFilter: "Top30",
		Side:          "TERRORIST",
	}
}

// FixedConfig returns a configuration that scrapes rawURL as-is.
func FixedConfig(rawURL string) Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeFixed
	cfg.URL = rawURL
	return cfg
}

var validate = validator.New()

// Validate checks that exactly one mode is usable.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Mode == ModeFixed {
		if c.URL == "" {
			return fmt.Errorf("%w: fixed mode requires a URL", ErrInvalidConfig)
		}
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: URL must be absolute http(s): %q", ErrInvalidConfig, c.URL)
		}
	}
	return nil
}

// BuildURL returns the stats page URL for cfg. now supplies the end of the
// window when cfg.EndDate is unset; its location decides the calendar day.
func BuildURL(cfg Config, now time.Time) string {
	if cfg.Mode == ModeFixed {
		return cfg.URL
	}

	end := now
	if !cfg.EndDate.IsZero() {
		end = cfg.EndDate
	}
	start := end.AddDate(0, 0, -cfg.LookbackDays)

	// Key order is significant, so url.Values (sorted) is not used.
	params := [][2]string{
		{"startDate", start.Format(DateLayout)},
		{"endDate", end.Format(DateLayout)},
		{"maps", cfg.Maps},
		{"rankingFilter", cfg.RankingFilter},
		{"side", cfg.Side},
	}

	var sb strings.Builder
	sb.WriteString(BaseURL)
	for i, p := range params {
		if i == 0 {
			sb.WriteByte('?')
		} else {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p[0]))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String()
}

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (want YYYY-MM-DD)", ErrInvalidConfig, s)
	}
	return t, nil
}
