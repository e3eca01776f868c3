package journal

const Schema = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	time DATETIME NOT NULL,
	type TEXT NOT NULL,
	order_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	contract TEXT NOT NULL,
	qty INTEGER NOT NULL,
	price TEXT NOT NULL,
	note TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash TEXT NOT NULL,
	account_value TEXT NOT NULL,
	pnl TEXT NOT NULL,
	pnl_percent TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_time ON entries(time);
CREATE INDEX IF NOT EXISTS idx_entries_order ON entries(order_id);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
