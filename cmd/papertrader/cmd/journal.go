package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the trade journal",
	Long: `Print the performance summary and recent trades from a journal file.

Example:
  papertrader journal -f data/trade_journal.json`,
	RunE: runJournal,
}

var (
	journalPath   string
	journalSQLite bool
	journalResume bool
)

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVarP(&journalPath, "file", "f", "data/trade_journal.json", "path to journal store")
	journalCmd.Flags().BoolVar(&journalSQLite, "sqlite", false, "treat the journal file as a SQLite database")
	journalCmd.Flags().BoolVar(&journalResume, "resume", false, "clear an active pause and reset the losing streak")
}

func runJournal(cmd *cobra.Command, args []string) error {
	log := newLogger()

	var store journal.Store
	var err error
	if journalSQLite {
		store, err = journal.NewSQLiteStore(journalPath)
	} else {
		store, err = journal.NewJSONStore(journalPath)
	}
	if err != nil {
		return fmt.Errorf("open journal store: %w", err)
	}

	jnl, err := journal.Open(store, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jnl.Close()

	if journalResume {
		jnl.ManualResume()
	}

	fmt.Print(jnl.Report())
	return nil
}
