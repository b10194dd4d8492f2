package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T) *SQLBackend {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "password", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:password@%s:%d/testdb?sslmode=disable", host, port.Int())
	b, err := OpenPostgres(dsn, PostgresOptions{ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.Eventually(t, func() bool {
		return b.Ping(ctx) == nil
	}, 30*time.Second, 500*time.Millisecond)

	return b
}

func TestPostgres_Integration(t *testing.T) {
	b := setupPostgresContainer(t)
	ctx := context.Background()

	_, err := b.Execute(ctx, Query{Kind: KindCreateSchema})
	require.NoError(t, err)
	_, err = b.Execute(ctx, Query{Kind: KindCreateSchema})
	require.NoError(t, err)

	alice := insertUser(t, b, "alice", "a@x.com", nil)
	bob := insertUser(t, b, "bob", "b@x.com", "+15550100")
	assert.Greater(t, bob, alice)

	_, err = b.Execute(ctx, Query{Kind: KindInsertUser, Args: []any{"eve", "a@x.com", nil, "hash"}})
	assert.ErrorIs(t, err, ErrUniqueViolation)

	var n int
	require.NoError(t, b.db.Get(&n, `SELECT COUNT(*) FROM users WHERE email = $1`, "a@x.com"))
	assert.Equal(t, 1, n)

	res, err := b.Execute(ctx, Query{Kind: KindSelectUserByEmail, Args: []any{"b@x.com"}})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, bob, res.Rows[0].UserID)
	require.NotNil(t, res.Rows[0].Phone)

	res, err = b.Execute(ctx, Query{Kind: KindListUsers})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "bob", res.Rows[0].Username)
	assert.Empty(t, res.Rows[0].PasswordHash)
}
