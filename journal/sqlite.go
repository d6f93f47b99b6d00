package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists the journal document in SQLite. Save keeps the same
// full-rewrite contract as the JSON store: the whole document is replaced
// inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (Document, error) {
	var doc Document

	rows, err := s.db.Query(`
		SELECT id, timestamp, symbol, action, strategy, market_regime, entry_reason,
		       entry_price, shares, total_value, stop_loss, take_profit_1, take_profit_2,
		       risk_reward, risk_amount, exit_time, exit_price, exit_reason, pnl, pnl_pct
		FROM entries ORDER BY timestamp`)
	if err != nil {
		return doc, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		var exitReason sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Symbol, &e.Action, &e.Strategy, &e.Regime, &e.Reason,
			&e.EntryPrice, &e.Shares, &e.TotalValue, &e.StopLoss, &e.TakeProfit1, &e.TakeProfit2,
			&e.RiskReward, &e.RiskAmount, &e.ExitTime, &e.ExitPrice, &exitReason, &e.PnL, &e.PnLPct,
		); err != nil {
			return doc, fmt.Errorf("scan entry: %w", err)
		}
		e.ExitReason = exitReason.String
		doc.Entries = append(doc.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return doc, err
	}

	err = s.db.QueryRow(`
		SELECT consecutive_losses, pause_until, pause_reason FROM journal_state WHERE id = 1`).
		Scan(&doc.ConsecutiveLosses, &doc.PauseUntil, &doc.PauseReason)
	if err == sql.ErrNoRows {
		return doc, nil
	}
	return doc, err
}

func (s *SQLiteStore) Save(doc Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return err
	}
	for _, e := range doc.Entries {
		_, err := tx.Exec(`
			INSERT INTO entries
			(id, timestamp, symbol, action, strategy, market_regime, entry_reason,
			 entry_price, shares, total_value, stop_loss, take_profit_1, take_profit_2,
			 risk_reward, risk_amount, exit_time, exit_price, exit_reason, pnl, pnl_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Timestamp, e.Symbol, e.Action, e.Strategy, e.Regime, e.Reason,
			e.EntryPrice, e.Shares, e.TotalValue, e.StopLoss, e.TakeProfit1, e.TakeProfit2,
			e.RiskReward, e.RiskAmount, e.ExitTime, e.ExitPrice, e.ExitReason, e.PnL, e.PnLPct,
		)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO journal_state (id, consecutive_losses, pause_until, pause_reason)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			consecutive_losses = excluded.consecutive_losses,
			pause_until = excluded.pause_until,
			pause_reason = excluded.pause_reason`,
		doc.ConsecutiveLosses, doc.PauseUntil, doc.PauseReason,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
