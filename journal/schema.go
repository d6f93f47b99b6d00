package journal

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	timestamp DATETIME NOT NULL,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	strategy TEXT NOT NULL,
	market_regime TEXT NOT NULL,
	entry_reason TEXT NOT NULL,
	entry_price REAL NOT NULL,
	shares INTEGER NOT NULL,
	total_value REAL NOT NULL,
	stop_loss REAL NOT NULL,
	take_profit_1 REAL NOT NULL,
	take_profit_2 REAL NOT NULL,
	risk_reward REAL NOT NULL,
	risk_amount REAL NOT NULL,
	exit_time DATETIME,
	exit_price REAL,
	exit_reason TEXT,
	pnl REAL,
	pnl_pct REAL
);

CREATE TABLE IF NOT EXISTS journal_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	consecutive_losses INTEGER NOT NULL,
	pause_until DATETIME,
	pause_reason TEXT
);

CREATE INDEX IF NOT EXISTS idx_entries_symbol ON entries(symbol);
`
