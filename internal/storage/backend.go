package storage

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

type shape int

const (
	// shapeExec runs a command and reads the generated id from sql.Result.
	shapeExec shape = iota
	// shapeRows runs a row-returning query.
	shapeRows
	// shapeReturningID runs an insert that returns the generated id as a row.
	shapeReturningID
)

type statement struct {
	sql   string
	shape shape
}

// dialect is the store-native rendition of every Kind plus the store's error classifier.
type dialect struct {
	name       string
	statements map[Kind]statement
	classify   func(error) error
}

// SQLBackend runs structured queries on a database/sql store through sqlx.
type SQLBackend struct {
	db          *sqlx.DB
	dialect     dialect
	timeout     time.Duration
	schemaReady atomic.Bool
}

func newSQLBackend(db *sqlx.DB, d dialect, timeout time.Duration) *SQLBackend {
	return &SQLBackend{
		db:      db,
		dialect: d,
		timeout: timeout,
	}
}

// Name returns the dialect name, e.g. "postgres".
func (b *SQLBackend) Name() string {
	return b.dialect.name
}

// Execute runs q, creating the users table first if this backend has not done so yet.
func (b *SQLBackend) Execute(ctx context.Context, q Query) (*Result, error) {
	stmt, ok := b.dialect.statements[q.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnsupportedQuery, q.Kind, b.dialect.name)
	}

	if q.Kind != KindCreateSchema && !b.schemaReady.Load() {
		if _, err := b.Execute(ctx, Query{Kind: KindCreateSchema}); err != nil {
			return nil, err
		}
	}

	res, err := b.run(ctx, stmt, q.Args)

	logger.Log.Debugw("query",
		"backend", b.dialect.name,
		"kind", q.Kind.String(),
		"args", len(q.Args),
		"error", err,
	)

	if err != nil {
		err = b.dialect.classify(err)
		if !errors.Is(err, ErrIntegrity) {
			b.schemaReady.Store(false)
		}
		return nil, err
	}

	if q.Kind == KindCreateSchema {
		b.schemaReady.Store(true)
	}
	return res, nil
}

func (b *SQLBackend) run(ctx context.Context, stmt statement, args []any) (*Result, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	switch stmt.shape {
	case shapeRows:
		rows := []models.UserDB{}
		if err := b.db.SelectContext(ctx, &rows, stmt.sql, args...); err != nil {
			return nil, err
		}
		return &Result{Rows: rows}, nil

	case shapeReturningID:
		var id int64
		if err := b.db.GetContext(ctx, &id, stmt.sql, args...); err != nil {
			return nil, err
		}
		return &Result{LastInsertID: id}, nil

	default:
		res, err := b.db.ExecContext(ctx, stmt.sql, args...)
		if err != nil {
			return nil, err
		}
		// Not every driver reports ids; schema statements have none.
		id, _ := res.LastInsertId()
		return &Result{LastInsertID: id}, nil
	}
}

// Ping checks that the store accepts connections.
func (b *SQLBackend) Ping(ctx context.Context) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	if err := b.db.PingContext(ctx); err != nil {
		return b.dialect.classify(err)
	}
	return nil
}

// Close releases the connection pool.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
