package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		engine  string
		want    string
		driver  string
		wantErr bool
	}{
		{engine: "", want: EngineSQLite, driver: "sqlite3"},
		{engine: "sqlite3", want: EngineSQLite, driver: "sqlite3"},
		{engine: "PostgreSQL", want: EnginePostgres, driver: "postgres"},
		{engine: "mysql", want: EngineMySQL, driver: "mysql"},
		{engine: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			d, err := DialectFor(tt.engine)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialectFor(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if d.Name() != tt.want || d.DriverName() != tt.driver {
				t.Errorf("DialectFor(%q) = %s/%s, want %s/%s", tt.engine, d.Name(), d.DriverName(), tt.want, tt.driver)
			}
		})
	}
}

func TestLastInsertIDSupport(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    bool
	}{
		{NewSQLiteDialect(), true},
		{NewMySQLDialect(), true},
		{NewPostgresDialect(), false},
	}
	for _, tt := range tests {
		if got := tt.dialect.HasLastInsertID(); got != tt.want {
			t.Errorf("%s HasLastInsertID() = %v, want %v", tt.dialect.Name(), got, tt.want)
		}
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name  string
		d     Dialect
		conn  ConnConfig
		wants []string
	}{
		{
			name:  "sqlite carries pragmas",
			d:     NewSQLiteDialect(),
			conn:  ConnConfig{Path: "/tmp/lists.db"},
			wants: []string{"/tmp/lists.db?", "_foreign_keys=on", "_txlock=immediate"},
		},
		{
			name:  "sqlite appends to existing query",
			d:     NewSQLiteDialect(),
			conn:  ConnConfig{Path: "file:lists.db?cache=shared"},
			wants: []string{"cache=shared&_foreign_keys=on"},
		},
		{
			name:  "mysql enables parseTime",
			d:     NewMySQLDialect(),
			conn:  ConnConfig{URL: "user:pass@tcp(localhost:3306)/todo"},
			wants: []string{"parseTime=true"},
		},
		{
			name:  "postgres passes the url through",
			d:     NewPostgresDialect(),
			conn:  ConnConfig{URL: "postgres://u@localhost/todo?sslmode=disable", Path: "ignored.db"},
			wants: []string{"postgres://u@localhost/todo?sslmode=disable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := tt.d.DSN(tt.conn)
			for _, want := range tt.wants {
				if !strings.Contains(dsn, want) {
					t.Errorf("DSN() = %q, missing %q", dsn, want)
				}
			}
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM todo_lists WHERE handle = ?",
			expected: "SELECT * FROM todo_lists WHERE handle = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM todo_lists WHERE handle = ?",
			expected: "SELECT * FROM todo_lists WHERE handle = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO todo_items (list_id, task, position) VALUES (?, ?, ?)",
			expected: "INSERT INTO todo_items (list_id, task, position) VALUES ($1, $2, $3)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE todo_items SET task = ?, done = ? WHERE id = ?",
			expected: "UPDATE todo_items SET task = ?, done = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.expected {
				t.Errorf("Rebind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		err     error
		want    bool
	}{
		{"sqlite unique", NewSQLiteDialect(), sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite foreign key", NewSQLiteDialect(), sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false},
		{"sqlite wrapped", NewSQLiteDialect(), fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), true},
		{"postgres unique", NewPostgresDialect(), &pq.Error{Code: "23505"}, true},
		{"postgres not null", NewPostgresDialect(), &pq.Error{Code: "23502"}, false},
		{"mysql duplicate", NewMySQLDialect(), &mysql.MySQLError{Number: 1062}, true},
		{"mysql other", NewMySQLDialect(), &mysql.MySQLError{Number: 1452}, false},
		{"plain error", NewSQLiteDialect(), errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	content := "-- header\nCREATE TABLE a (id INT);\n\n-- second\nCREATE TABLE b (id INT);\n"
	stmts := splitStatements(content)
	if len(stmts) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (id INT)" {
		t.Errorf("first statement = %q", stmts[0])
	}
}
