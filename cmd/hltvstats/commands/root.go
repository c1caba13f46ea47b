// Package commands implements the CLI commands for hltvstats.
package commands

import (
	"os"
	_ "time/tzdata" // --timezone validation without system zoneinfo

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/pkg/hltv"
)

var rootCmd = &cobra.Command{
	Use:   "hltvstats",
	Short: "Export HLTV player statistics to CSV",
	Long: `hltvstats renders the HLTV player statistics page, finds the
player stats table and saves it as CSV with a profile URL column
next to each player.

By default the last 92 days of Top30 T-side play on Ancient are
exported. Pass --url to scrape an exact stats page instead.

Examples:
  # Default window, written to data/hltv_players.csv
  hltvstats scrape

  # CT side on Mirage over the last 30 days, as JSON on stdout
  hltvstats scrape --maps de_mirage --side COUNTER_TERRORIST --days 30 \
      --format json -o -

  # A fixed stats URL with a preview of the first rows
  hltvstats scrape -u "https://www.hltv.org/stats/players?maps=de_nuke" --preview 10

  # Print the URL that would be scraped
  hltvstats url --end-date 2024-06-01`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	pflags := rootCmd.PersistentFlags()
	pflags.String("config", "", "config file (default $HOME/.hltvstats.yaml)")
	pflags.Bool("debug", false, "enable debug logging")
	pflags.BoolP("quiet", "q", false, "suppress progress output")

	// Target selection, shared by scrape and url
	defaults := hltv.DefaultConfig()
	pflags.StringP("url", "u", "", "scrape this stats URL as-is (overrides the date window)")
	pflags.String("end-date", "", "last day of the window, YYYY-MM-DD (default: today)")
	pflags.Int("days", defaults.LookbackDays, "window length in days")
	pflags.String("maps", defaults.Maps, "maps filter")
	pflags.String("ranking", defaults.RankingFilter, "ranking filter")
	pflags.String("side", defaults.Side, "side filter: TERRORIST, COUNTER_TERRORIST")

	for key, flag := range map[string]string{
		"config":   "config",
		"debug":    "debug",
		"quiet":    "quiet",
		"url":      "url",
		"end_date": "end-date",
		"days":     "days",
		"maps":     "maps",
		"ranking":  "ranking",
		"side":     "side",
	} {
		_ = viper.BindPFlag(key, pflags.Lookup(flag))
	}
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".hltvstats")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. HLTVSTATS_FETCH_MODE
	viper.SetEnvPrefix("HLTVSTATS")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogger applies the global logging flags.
func initLogger() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})
	if file := viper.ConfigFileUsed(); file != "" {
		logger.Debug("using config file", "path", file)
	}
}

// targetConfig builds the stats page selection from flags, environment
// and config file.
func targetConfig() (hltv.Config, error) {
	if u := viper.GetString("url"); u != "" {
		cfg := hltv.FixedConfig(u)
		return cfg, cfg.Validate()
	}

	cfg := hltv.DefaultConfig()
	cfg.LookbackDays = viper.GetInt("days")
	cfg.Maps = viper.GetString("maps")
	cfg.RankingFilter = viper.GetString("ranking")
	cfg.Side = viper.GetString("side")

	if s := viper.GetString("end_date"); s != "" {
		end, err := hltv.ParseDate(s)
		if err != nil {
			return cfg, err
		}
		cfg.EndDate = end
	}

	return cfg, cfg.Validate()
}
