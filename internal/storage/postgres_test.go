package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPostgresMock(t *testing.T) (*SQLBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresBackend(sqlx.NewDb(db, "pgx"), time.Second), mock
}

func TestPostgres_InsertReturnsGeneratedID(t *testing.T) {
	b, mock := setupPostgresMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO users .+ RETURNING id`).
		WithArgs("alice", "a@x.com", nil, "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(17))

	res, err := b.Execute(context.Background(), Query{
		Kind: KindInsertUser,
		Args: []any{"alice", "a@x.com", nil, "hash"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(17), res.LastInsertID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SchemaRunsOncePerConnection(t *testing.T) {
	b, mock := setupPostgresMock(t)
	now := time.Now()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT id, username, email, phone, created_at FROM users ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "phone", "created_at"}).
				AddRow(2, "bob", "b@x.com", nil, now).
				AddRow(1, "alice", "a@x.com", "+1555", now.Add(-time.Minute)))
	}

	for i := 0; i < 2; i++ {
		res, err := b.Execute(context.Background(), Query{Kind: KindListUsers})
		require.NoError(t, err)
		require.Len(t, res.Rows, 2)
		assert.Equal(t, "bob", res.Rows[0].Username)
		assert.Nil(t, res.Rows[0].Phone)
		require.NotNil(t, res.Rows[1].Phone)
		assert.Equal(t, "+1555", *res.Rows[1].Phone)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SchemaRecheckedAfterFailure(t *testing.T) {
	b, mock := setupPostgresMock(t)
	shutdown := &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ WHERE email = \$1`).WithArgs("a@x.com").WillReturnError(shutdown)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ WHERE email = \$1`).WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "phone", "password_hash", "created_at"}))

	q := Query{Kind: KindSelectUserByEmail, Args: []any{"a@x.com"}}
	_, err := b.Execute(context.Background(), q)
	assert.ErrorIs(t, err, ErrConnectivity)

	res, err := b.Execute(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UniqueViolation(t *testing.T) {
	b, mock := setupPostgresMock(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := b.Execute(context.Background(), Query{
		Kind: KindInsertUser,
		Args: []any{"alice", "a@x.com", nil, "hash"},
	})
	assert.ErrorIs(t, err, ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyPostgres(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrUniqueViolation},
		{"not null violation", &pgconn.PgError{Code: "23502"}, ErrIntegrity},
		{"check violation", &pgconn.PgError{Code: "23514"}, ErrIntegrity},
		{"connection exception", &pgconn.PgError{Code: "08006"}, ErrConnectivity},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrConnectivity},
		{"crash shutdown", &pgconn.PgError{Code: "57P02"}, ErrConnectivity},
		{"cannot connect now", &pgconn.PgError{Code: "57P03"}, ErrConnectivity},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrConnectivity},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ErrConnectivity},
		{"dns", &net.DNSError{Err: "no such host", Name: "db.invalid", IsNotFound: true}, ErrConnectivity},
		{"bad conn", driver.ErrBadConn, ErrConnectivity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyPostgres(tt.err), tt.want)
		})
	}
}

func TestClassifyPostgres_PassesThroughOtherErrors(t *testing.T) {
	for _, err := range []error{
		&pgconn.PgError{Code: "42601"},
		errors.New("something odd"),
		context.Canceled,
	} {
		got := classifyPostgres(err)
		assert.Same(t, err, got)
		assert.NotErrorIs(t, got, ErrConnectivity)
		assert.NotErrorIs(t, got, ErrIntegrity)
	}
}

func TestOpenPostgres_InvalidDSN(t *testing.T) {
	_, err := OpenPostgres("postgres://%zz", PostgresOptions{})
	assert.Error(t, err)
}

func TestOpenPostgres_UnreachableHostIsConnectivity(t *testing.T) {
	b, err := OpenPostgres("postgres://user:pw@127.0.0.1:1/db?sslmode=disable", PostgresOptions{
		ConnectTimeout: time.Second,
		MaxOpenConns:   2,
		MaxIdleConns:   1,
	})
	require.NoError(t, err)
	defer b.Close()

	assert.ErrorIs(t, b.Ping(context.Background()), ErrConnectivity)
	assert.Equal(t, "postgres", b.Name())
}

func TestRouter_ClientDisconnectDuringPostgresConnect(t *testing.T) {
	// Accepts connections but never answers the startup message.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	dsn := fmt.Sprintf("postgres://user:pw@%s/db?sslmode=disable", ln.Addr().String())
	primary, err := OpenPostgres(dsn, PostgresOptions{ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	fallback, err := OpenSQLite(":memory:", time.Second)
	require.NoError(t, err)
	r := NewRouter(primary, fallback)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = r.Execute(ctx, listQuery())
	assert.Error(t, err)
	assert.Equal(t, StatePrimary, r.State())
}
