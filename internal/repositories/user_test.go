package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserRepository(t *testing.T) *UserRepository {
	t.Helper()
	fallback, err := storage.OpenSQLite(":memory:", 0)
	require.NoError(t, err)

	router := storage.NewRouter(nil, fallback)
	t.Cleanup(func() { _ = router.Close() })

	return NewUserRepository(router)
}

func TestUserRepository_SaveAndGetByEmail(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()
	phone := "+15550100"

	id, err := repo.Save(ctx, models.NewUser{
		Username:     "alice",
		Email:        "a@x.com",
		Phone:        &phone,
		PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	user, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.UserID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	require.NotNil(t, user.Phone)
	assert.Equal(t, phone, *user.Phone)
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	repo := setupUserRepository(t)

	user, err := repo.GetByEmail(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_SaveWithoutPhone(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, models.NewUser{Username: "bob", Email: "b@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	user, err := repo.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Nil(t, user.Phone)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, models.NewUser{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, models.NewUser{Username: "mallory", Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, storage.ErrUniqueViolation)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserRepository_List(t *testing.T) {
	repo := setupUserRepository(t)
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, name := range []string{"alice", "bob"} {
		_, err := repo.Save(ctx, models.NewUser{Username: name, Email: name + "@x.com", PasswordHash: "h"})
		require.NoError(t, err)
	}

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0].Username)
	assert.Empty(t, users[0].PasswordHash)
}

type failingExecutor struct{ err error }

func (f failingExecutor) Execute(ctx context.Context, q storage.Query) (*storage.Result, error) {
	return nil, f.err
}

func TestUserRepository_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	repo := NewUserRepository(failingExecutor{err: boom})
	ctx := context.Background()

	_, err := repo.Save(ctx, models.NewUser{})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, boom)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, boom)
}
