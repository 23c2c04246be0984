package journal

const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	initial_balance REAL NOT NULL,
	risk_percentage REAL NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	trading_rules TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS days (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	day_number INTEGER NOT NULL,
	date TEXT NOT NULL,
	trades TEXT NOT NULL,
	rules_followed TEXT NOT NULL DEFAULT '[]',
	UNIQUE (session_id, day_number)
);

CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	created DATETIME NOT NULL,
	days INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	win_rate REAL NOT NULL,
	total_r REAL NOT NULL,
	profit_factor REAL, -- NULL means infinite
	expectancy REAL NOT NULL,
	net_pnl REAL NOT NULL,
	final_balance REAL NOT NULL,
	max_dd_pct REAL NOT NULL,
	max_dd_amount REAL NOT NULL,
	sharpe REAL NOT NULL,
	sqn REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_days_session ON days(session_id, day_number);
CREATE INDEX IF NOT EXISTS idx_runs_session ON analysis_runs(session_id, created);
`
