package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A rule-based, risk-controlled paper-trading engine",
	Long: `Papertrader simulates disciplined equity trading against a virtual account.

It provides:
  - Market regime classification (trend, volume and volatility scoring)
  - Breakout and pullback entry detection with risk/reward validation
  - Risk-based position sizing with lot rounding and position caps
  - Circuit breakers for daily loss, drawdown and losing streaks
  - A durable trade journal with performance analytics and auto-pause`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the console logger shared by all subcommands.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
