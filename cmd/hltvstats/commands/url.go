package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/pkg/hltv"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the stats URL without fetching it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		initLogger()

		cfg, err := targetConfig()
		if err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), hltv.BuildURL(cfg, time.Now()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
}
