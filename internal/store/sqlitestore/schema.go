package sqlitestore

// schema defines the SQLite database structure. Nested aggregates (phase
// splits, quality counts, themes) are stored as JSON payloads; columns exist
// only for keys, ordering, and due-date filtering.
const schema = `
CREATE TABLE IF NOT EXISTS move_evaluations (
	game_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	side TEXT NOT NULL CHECK(side IN ('w', 'b')),
	seq INTEGER NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (game_id, user_id, side, seq)
);

CREATE TABLE IF NOT EXISTS analyses (
	game_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	side TEXT NOT NULL CHECK(side IN ('w', 'b')),
	analyzed_at DATETIME NOT NULL,
	payload TEXT NOT NULL,
	PRIMARY KEY (game_id, user_id, side)
);

CREATE INDEX IF NOT EXISTS idx_analyses_user_time ON analyses(user_id, analyzed_at);

CREATE TABLE IF NOT EXISTS puzzles (
	puzzle_key TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_puzzles_user ON puzzles(user_id);

CREATE TABLE IF NOT EXISTS attempts (
	attempt_id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	puzzle_key TEXT NOT NULL,
	correct INTEGER NOT NULL,
	time_taken_ms INTEGER NOT NULL,
	attempted_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attempts_user_puzzle ON attempts(user_id, puzzle_key);

CREATE TABLE IF NOT EXISTS claims (
	claim_key TEXT PRIMARY KEY,
	identity TEXT NOT NULL,
	bundle BLOB NOT NULL,
	claimed_at DATETIME NOT NULL
);
`
