package store

const schema = `
CREATE TABLE IF NOT EXISTS portfolio (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	cash REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS holdings (
	symbol TEXT PRIMARY KEY,
	quantity INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS buy_lots (
	symbol TEXT NOT NULL,
	seq INTEGER NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	PRIMARY KEY (symbol, seq)
);

CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY,
	type TEXT NOT NULL,
	symbol TEXT NOT NULL,
	price REAL NOT NULL,
	quantity INTEGER NOT NULL,
	time DATETIME NOT NULL,
	amount REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS latest_prices (
	symbol TEXT PRIMARY KEY,
	price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ran_at DATETIME NOT NULL,
	initial_cash REAL NOT NULL,
	final_value REAL NOT NULL,
	total_return REAL NOT NULL,
	transactions TEXT NOT NULL
);
`
