package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL CHECK (username <> ''),
		email TEXT NOT NULL UNIQUE CHECK (email <> ''),
		phone TEXT,
		password_hash TEXT NOT NULL CHECK (password_hash <> ''),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

var postgresDialect = dialect{
	name: "postgres",
	statements: map[Kind]statement{
		KindCreateSchema: {sql: postgresSchema, shape: shapeExec},
		KindInsertUser: {
			sql:   `INSERT INTO users (username, email, phone, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`,
			shape: shapeReturningID,
		},
		KindSelectUserByEmail: {
			sql:   `SELECT id, username, email, phone, password_hash, created_at FROM users WHERE email = $1 LIMIT 1`,
			shape: shapeRows,
		},
		KindListUsers: {
			sql:   `SELECT id, username, email, phone, created_at FROM users ORDER BY created_at DESC, id DESC`,
			shape: shapeRows,
		},
	},
	classify: classifyPostgres,
}

// PostgresOptions tunes the primary store pool.
type PostgresOptions struct {
	ConnectTimeout time.Duration
	MaxOpenConns   int
	MaxIdleConns   int
}

// OpenPostgres prepares a pool for dsn without connecting; the first query or Ping dials.
func OpenPostgres(dsn string, opts PostgresOptions) (*SQLBackend, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnectTimeout = opts.ConnectTimeout
	}

	db := sqlx.NewDb(stdlib.OpenDB(*cfg), "pgx")
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}

	return NewPostgresBackend(db, opts.ConnectTimeout), nil
}

// NewPostgresBackend wraps an existing handle with the PostgreSQL dialect.
func NewPostgresBackend(db *sqlx.DB, timeout time.Duration) *SQLBackend {
	return newSQLBackend(db, postgresDialect, timeout)
}

// classifyPostgres maps SQLSTATE codes and pgconn failures onto the storage error classes.
func classifyPostgres(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return uniqueViolation(err)
		case strings.HasPrefix(pgErr.Code, "23"):
			return integrity(err)
		case strings.HasPrefix(pgErr.Code, "08"),
			pgErr.Code == "57P01", // admin_shutdown
			pgErr.Code == "57P02", // crash_shutdown
			pgErr.Code == "57P03": // cannot_connect_now
			return connectivity(err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return connectivity(err)
	}

	return classifyTransport(err)
}
