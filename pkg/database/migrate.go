package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	author       TEXT NOT NULL,
	cover        TEXT NOT NULL DEFAULT '',
	rating       REAL NOT NULL DEFAULT 0,
	genre        TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	pages        INTEGER NOT NULL DEFAULT 0,
	publisher    TEXT NOT NULL DEFAULT '',
	publish_year INTEGER NOT NULL DEFAULT 0,
	status       TEXT NOT NULL DEFAULT 'none',
	language     TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
