package journal

// Schema is valid for both SQLite and Postgres. Times are stored as
// RFC3339 text.
const Schema = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	run_id TEXT PRIMARY KEY,
	created TEXT NOT NULL,
	strategy TEXT NOT NULL,
	dataset TEXT NOT NULL,
	levels TEXT NOT NULL,
	config TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	days INTEGER NOT NULL,
	skipped_days INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate DOUBLE PRECISION NOT NULL,
	net_points DOUBLE PRECISION NOT NULL,
	net_currency DOUBLE PRECISION NOT NULL,
	profit_factor DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	max_drawdown_pct DOUBLE PRECISION NOT NULL,
	sharpe DOUBLE PRECISION NOT NULL,
	sortino DOUBLE PRECISION NOT NULL,
	calmar DOUBLE PRECISION NOT NULL,
	ledger_path TEXT NOT NULL,
	org_path TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	run_id TEXT NOT NULL REFERENCES backtest_runs(run_id),
	seq INTEGER NOT NULL,
	date TEXT NOT NULL,
	dow TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_time TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_time TEXT NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	exit_reason TEXT NOT NULL,
	pnl_points DOUBLE PRECISION NOT NULL,
	pnl_currency DOUBLE PRECISION NOT NULL,
	duration_minutes DOUBLE PRECISION NOT NULL,
	stop_level DOUBLE PRECISION NOT NULL,
	initial_stop DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
`
