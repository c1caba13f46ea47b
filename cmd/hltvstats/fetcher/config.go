// Package fetcher provides the browser-backed fetchers used by the CLI:
// a chromedp renderer with optional stealth patches, and an auto mode
// that only starts Chrome when a plain HTTP fetch is not enough.
package fetcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/hltvstats/pkg/fetcher"
)

// Mode selects the fetch strategy.
type Mode string

const (
	ModeStatic  Mode = "static"
	ModeDynamic Mode = "dynamic"
	ModeAuto    Mode = "auto"
)

// Modes lists the supported fetch modes.
var Modes = []Mode{ModeStatic, ModeDynamic, ModeAuto}

// ParseMode parses a fetch mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeStatic, ModeDynamic, ModeAuto:
		return m, nil
	case "":
		return ModeDynamic, nil
	}
	return "", fmt.Errorf("unknown fetch mode: %s (use static, dynamic or auto)", s)
}

// Config holds configuration for the browser fetchers.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	Stealth    bool   // Enable anti-bot detection evasion
	ChromePath string // Explicit Chrome binary; discovered when empty
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: fetcher.DefaultUserAgent,
		Timeout:   45 * time.Second,
		Stealth:   true,
	}
}

// New creates the fetcher for mode.
func New(mode Mode, cfg Config) (fetcher.Fetcher, error) {
	static := fetcher.NewStatic(fetcher.StaticConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
	})

	switch mode {
	case ModeStatic:
		return static, nil
	case ModeDynamic:
		return NewDynamicFetcher(cfg)
	case ModeAuto:
		dynamic, err := NewDynamicFetcher(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
		}
		return NewAutoFetcher(static, dynamic), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}
}
