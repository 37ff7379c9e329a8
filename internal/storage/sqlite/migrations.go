package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as TEXT to keep decimal values exact.
const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    category TEXT NOT NULL,
    receipt_date TEXT NOT NULL,
    total_amount TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount_owed TEXT,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_participants_receipt_id ON participants(receipt_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
