package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL CHECK (username <> ''),
		email TEXT NOT NULL UNIQUE CHECK (email <> ''),
		phone TEXT,
		password_hash TEXT NOT NULL CHECK (password_hash <> ''),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

var sqliteDialect = dialect{
	name: "sqlite",
	statements: map[Kind]statement{
		KindCreateSchema: {sql: sqliteSchema, shape: shapeExec},
		KindInsertUser: {
			sql:   `INSERT INTO users (username, email, phone, password_hash) VALUES (?, ?, ?, ?)`,
			shape: shapeExec,
		},
		KindSelectUserByEmail: {
			sql:   `SELECT id, username, email, phone, password_hash, created_at FROM users WHERE email = ? LIMIT 1`,
			shape: shapeRows,
		},
		KindListUsers: {
			sql:   `SELECT id, username, email, phone, created_at FROM users ORDER BY created_at DESC, id DESC`,
			shape: shapeRows,
		},
	},
	classify: classifySQLite,
}

// OpenSQLite opens the embedded store at path (":memory:" for a private in-memory database).
func OpenSQLite(path string, timeout time.Duration) (*SQLBackend, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single writer avoids SQLITE_BUSY and keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	return NewSQLiteBackend(db, timeout), nil
}

// NewSQLiteBackend wraps an existing handle with the SQLite dialect.
func NewSQLiteBackend(db *sqlx.DB, timeout time.Duration) *SQLBackend {
	return newSQLBackend(db, sqliteDialect, timeout)
}

// classifySQLite maps SQLite result codes onto the storage error classes.
func classifySQLite(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return uniqueViolation(err)
		}

		switch code & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			if strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
				return uniqueViolation(err)
			}
			return integrity(err)
		case sqlite3.SQLITE_BUSY,
			sqlite3.SQLITE_LOCKED,
			sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_NOTADB:
			return connectivity(err)
		}
		return err
	}

	return classifyTransport(err)
}
