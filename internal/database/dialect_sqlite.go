package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// sqlitePragmas go on the DSN so every pooled connection gets them
const sqlitePragmas = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

// SQLiteDialect is the default single-file engine
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) Name() string       { return EngineSQLite }
func (d *SQLiteDialect) DriverName() string { return "sqlite3" }

func (d *SQLiteDialect) DSN(conn ConnConfig) string {
	if strings.Contains(conn.Path, "?") {
		return conn.Path + "&" + sqlitePragmas
	}
	return conn.Path + "?" + sqlitePragmas
}

func (d *SQLiteDialect) Rebind(query string) string { return query }

func (d *SQLiteDialect) HasLastInsertID() bool { return true }

func (d *SQLiteDialect) Configure(db *sql.DB) error {
	defaultPool.apply(db)
	return nil
}

func (d *SQLiteDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`
}

func (d *SQLiteDialect) BoolValue(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func (d *SQLiteDialect) UpsertStagedList() string {
	return `INSERT INTO staged_lists (session_id, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`
}

func (d *SQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return true
	}
	return false
}
