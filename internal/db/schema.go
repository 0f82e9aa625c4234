package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    category    TEXT NOT NULL DEFAULT 'Other'
                CHECK (category IN ('Documents', 'Electronics', 'Accessories', 'Clothing', 'Other')),
    location    TEXT NOT NULL,
    date        DATETIME NOT NULL,
    image_url   TEXT NOT NULL DEFAULT '',
    image       BLOB,
    image_mime  TEXT,
    status      TEXT NOT NULL DEFAULT 'Lost' CHECK (status IN ('Lost', 'Found', 'Returned')),
    type        TEXT NOT NULL CHECK (type IN ('lost', 'found')),
    user_id     TEXT NOT NULL REFERENCES users(id),
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- type is fixed at creation.
CREATE TRIGGER IF NOT EXISTS trg_items_type_immutable
BEFORE UPDATE OF type ON items
WHEN NEW.type <> OLD.type
BEGIN
    SELECT RAISE(ABORT, 'item type is immutable');
END;
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
