package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/config"
	"github.com/rustyeddy/papertrader/feed"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/notify"
	"github.com/rustyeddy/papertrader/regime"
	"github.com/rustyeddy/papertrader/risk"
	"github.com/rustyeddy/papertrader/sim"
	"github.com/rustyeddy/papertrader/strategies"
	"github.com/rustyeddy/papertrader/trader"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop from a config file",
	Long: `Start the paper-trading loop with settings from a configuration file.

The loop polls the configured feed once per interval, classifies each
symbol's regime, evaluates entries and manages open positions until
interrupted. Ctrl-C finishes the current tick and writes a final digest.

Example:
  papertrader run -f examples/configs/paper.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runIgnoreCal  bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().BoolVar(&runIgnoreCal, "ignore-calendar", false, "tick even outside market hours")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	interval, err := cfg.Account.ParsePollInterval()
	if err != nil {
		return err
	}

	src, err := buildFeed(cfg.Feed)
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}

	store, err := buildStore(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal store: %w", err)
	}
	jnl, err := journal.Open(store, log.With().Str("component", "journal").Logger())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	ledger := sim.New(cfg.Account.InitialCapital, log.With().Str("component", "sim").Logger())
	gate := risk.NewManager(cfg.Risk.Policy(), log.With().Str("component", "risk").Logger())
	events := notify.NewController(notify.NewLogNotifier(log.With().Str("component", "notify").Logger()))

	var cal *market.Calendar
	if !runIgnoreCal {
		cal = market.DefaultCalendar()
	}

	t := trader.New(trader.Deps{
		Symbols:    cfg.Account.Symbols,
		Feed:       feed.NewCached(src),
		Classifier: regime.NewClassifier(cfg.Regime, log.With().Str("component", "regime").Logger()),
		Engine:     strategies.NewEngine(cfg.Strategy, log.With().Str("component", "strategies").Logger()),
		Gate:       gate,
		Ledger:     ledger,
		Journal:    jnl,
		Events:     events,
		Calendar:   cal,
		Interval:   interval,
		Log:        log.With().Str("component", "trader").Logger(),
	})

	log.Info().
		Float64("capital", cfg.Account.InitialCapital).
		Strs("symbols", cfg.Account.Symbols).
		Dur("interval", interval).
		Msg("starting paper trading")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return t.Run(ctx)
}

func buildFeed(cfg config.FeedConfig) (feed.Feed, error) {
	switch cfg.Mode {
	case "replay":
		return feed.NewReplay(cfg.File)
	case "demo":
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return feed.NewDemo(cfg.Base, seed), nil
	default:
		return nil, fmt.Errorf("unknown feed mode %q", cfg.Mode)
	}
}

func buildStore(cfg config.JournalConfig) (journal.Store, error) {
	if cfg.Type == "sqlite" {
		return journal.NewSQLiteStore(cfg.Path)
	}
	return journal.NewJSONStore(cfg.Path)
}
