package commands

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/hltvstats/cmd/hltvstats/fetcher"
	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/internal/output"
	"github.com/jmylchreest/hltvstats/pkg/hltv"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the player stats table and save it",
	Long: `Render the HLTV player statistics page, locate the stats table and
write it out with a "Player URL" column inserted after the player column.

The table is the first one whose headers mention "player" together with
"rating" or "K/D". Without such a table the first table on the page is
used and a warning is logged; --strict turns that into an error.

Fetch modes:
  dynamic  headless Chrome (default; needed for the live site)
  static   plain HTTP request, no JavaScript
  auto     static first, Chrome when the response has no table`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()
	fetchDefaults := hltv.DefaultFetchOptions()

	// Fetch settings
	flags.String("fetch-mode", string(clifetcher.ModeDynamic), "fetch mode: static, dynamic, auto")
	flags.Duration("timeout", fetchDefaults.Timeout, "page load timeout")
	flags.Duration("settle", fetchDefaults.WaitDuration, "extra wait after the table appears")
	flags.String("timezone", fetchDefaults.Timezone, "browser timezone (IANA name)")
	flags.String("locale", fetchDefaults.Locale, "browser locale")
	flags.Bool("stealth", true, "patch common headless browser fingerprints")
	flags.String("chrome-path", "", "Chrome/Chromium binary (default: search PATH)")

	// Validation
	flags.Int("min-rows", 1, "fail when fewer rows are extracted")
	flags.Bool("strict", false, "fail instead of falling back to the first table")

	// Output settings
	flags.StringP("output", "o", "data/hltv_players.csv", `output file ("-" for stdout)`)
	flags.String("format", string(output.FormatCSV), "output format: csv, json, jsonl, yaml")
	flags.Bool("bom", false, "prefix CSV output with a UTF-8 byte order mark")
	flags.Int("preview", 0, "print the first N rows as a table on stderr")

	for key, flag := range map[string]string{
		"fetch_mode":  "fetch-mode",
		"timeout":     "timeout",
		"settle":      "settle",
		"timezone":    "timezone",
		"locale":      "locale",
		"stealth":     "stealth",
		"chrome_path": "chrome-path",
		"min_rows":    "min-rows",
		"strict":      "strict",
		"output":      "output",
		"format":      "format",
		"bom":         "bom",
		"preview":     "preview",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runScrape(cmd *cobra.Command, _ []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("scrape command starting")

	cfg, err := targetConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}

	format, err := output.ParseFormat(viper.GetString("format"))
	if err != nil {
		logger.Error("invalid output format", "error", err)
		return err
	}

	mode, err := clifetcher.ParseMode(viper.GetString("fetch_mode"))
	if err != nil {
		logger.Error("invalid fetch mode", "error", err)
		return err
	}

	fetchOpts := hltv.DefaultFetchOptions()
	fetchOpts.Timeout = viper.GetDuration("timeout")
	fetchOpts.WaitDuration = viper.GetDuration("settle")
	fetchOpts.Timezone = viper.GetString("timezone")
	fetchOpts.Locale = viper.GetString("locale")
	if _, err := time.LoadLocation(fetchOpts.Timezone); err != nil {
		logger.Error("invalid timezone", "timezone", fetchOpts.Timezone, "error", err)
		return err
	}

	f, err := clifetcher.New(mode, clifetcher.Config{
		UserAgent:  fetchOpts.UserAgent,
		Timeout:    fetchOpts.Timeout,
		Stealth:    viper.GetBool("stealth"),
		ChromePath: viper.GetString("chrome_path"),
	})
	if err != nil {
		logger.Error("failed to create fetcher", "mode", mode, "error", err)
		return err
	}
	// Note: fetcher is closed by s.Close()

	s, err := hltv.New(
		hltv.WithFetcher(f),
		hltv.WithFetchOptions(fetchOpts),
		hltv.WithMinRows(viper.GetInt("min_rows")),
		hltv.WithStrict(viper.GetBool("strict")),
	)
	if err != nil {
		_ = f.Close()
		logger.Error("failed to initialize", "error", err)
		return err
	}
	defer func() { _ = s.Close() }()

	report, err := s.Run(ctx, cfg)
	if err != nil {
		logger.Error("scrape failed", "url", report.URL, "error", err)
		return err
	}

	outPath := viper.GetString("output")
	written, err := writeReport(outPath, format, report)
	if err != nil {
		logger.Error("failed to write output", "path", outPath, "format", format, "error", err)
		return err
	}

	logger.Info("saved",
		"rows", len(report.Result.Rows),
		"columns", len(report.Result.Headers),
		"path", outPath,
		"size", humanize.Bytes(written),
		"fetch", report.FetchDuration.Round(time.Millisecond))

	output.RenderPreview(os.Stderr, report.Result, viper.GetInt("preview"))
	return nil
}

// writeReport encodes the extracted table to path and returns the number
// of bytes written. The file is only created once there is data to write.
func writeReport(path string, format output.Format, report hltv.Report) (uint64, error) {
	sink, err := output.Create(path)
	if err != nil {
		return 0, err
	}

	w, err := output.NewWriter(sink, format, output.WithBOM(viper.GetBool("bom")))
	if err != nil {
		_ = sink.Close()
		return 0, err
	}

	err = errors.Join(w.Write(report.Result), w.Close(), sink.Close())
	return sink.Bytes(), err
}
