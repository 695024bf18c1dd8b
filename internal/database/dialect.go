package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Engine names accepted in DB_TYPE. They also name the migration
// directories and are recorded in backups.
const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
	EngineMySQL    = "mysql"
)

// Dialect hides the differences between the supported SQL engines.
// Repositories write queries with ? placeholders; Rebind adapts them.
type Dialect interface {
	Name() string
	DriverName() string
	DSN(conn ConnConfig) string
	Rebind(query string) string

	// HasLastInsertID is false where inserts need RETURNING id instead
	HasLastInsertID() bool

	Configure(db *sql.DB) error
	MigrationsTableDDL() string
	BoolValue(b bool) string

	// UpsertStagedList writes one staged_lists row; args are session_id, payload
	UpsertStagedList() string

	// IsUniqueViolation reports whether err came from a UNIQUE or primary key constraint.
	// Handle collisions on list insert are detected with it.
	IsUniqueViolation(err error) bool
}

// ConnConfig locates the database: a file path for SQLite, a URL otherwise
type ConnConfig struct {
	Path string
	URL  string
}

// DialectFor maps a DB_TYPE value to its dialect
func DialectFor(engine string) (Dialect, error) {
	switch strings.ToLower(engine) {
	case EnginePostgres, "postgresql":
		return NewPostgresDialect(), nil
	case EngineMySQL:
		return NewMySQLDialect(), nil
	case EngineSQLite, "sqlite3", "":
		return NewSQLiteDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", engine)
	}
}

// pool limits are shared by all engines; SQLite serializes writers through
// _txlock=immediate and the busy timeout rather than a single connection
type pool struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

var defaultPool = pool{
	maxOpen:     25,
	maxIdle:     5,
	maxLifetime: 5 * time.Minute,
	maxIdleTime: time.Minute,
}

func (p pool) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.maxOpen)
	db.SetMaxIdleConns(p.maxIdle)
	db.SetConnMaxLifetime(p.maxLifetime)
	db.SetConnMaxIdleTime(p.maxIdleTime)
}
