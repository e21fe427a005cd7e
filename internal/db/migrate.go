package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the client, instrument and note tables if they are missing.
// Parent columns declare foreign keys without ON DELETE CASCADE: removing a
// parent's descendants is the cascade coordinator's job.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS instruments (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		clientId INTEGER,
		name     TEXT NOT NULL,
		FOREIGN KEY (clientId) REFERENCES clients(id)
	)`,
	`CREATE TABLE IF NOT EXISTS notes (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		instrumentId INTEGER,
		note         TEXT NOT NULL,
		FOREIGN KEY (instrumentId) REFERENCES instruments(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_instruments_client ON instruments(clientId)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_instrument ON notes(instrumentId)`,
}
