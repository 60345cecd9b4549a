package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Column names of the items table match
// the JSON records served by GET /items.
const schema = `
CREATE TABLE IF NOT EXISTS items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL CHECK (description <> ''),
    status      TEXT NOT NULL CHECK (status IN ('lost', 'found')),
    imageUrl    TEXT NOT NULL CHECK (imageUrl <> ''),
    location    TEXT NOT NULL CHECK (location <> ''),
    secret_hash TEXT,
    createdAt   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS found_reports (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id         INTEGER NOT NULL,
    phone           TEXT NOT NULL CHECK (phone <> ''),
    found_image_url TEXT NOT NULL CHECK (found_image_url <> ''),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_found_reports_item ON found_reports(item_id);
`

// column is a column that later versions added to an existing table.
type column struct {
	table string
	name  string
	decl  string
}

// addedColumns are applied in order after schema creation. Databases created
// before a column existed get it added; fresh databases already have it.
// Append new columns at the end.
var addedColumns = []column{
	{table: "items", name: "secret_hash", decl: "TEXT"},
}

// EnsureSchema creates all tables and indexes if they don't already exist and
// adds any columns missing from older databases.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, c := range addedColumns {
		exists, err := hasColumn(db, c.table, c.name)
		if err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.decl)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}

func hasColumn(db *sql.DB, table, name string) (bool, error) {
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return false, fmt.Errorf("scanning column of %s: %w", table, err)
		}
		if col == name {
			return true, nil
		}
	}
	return false, rows.Err()
}
