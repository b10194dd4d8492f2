package repositories

import (
	"context"

	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/storage"
)

// QueryExecutor runs structured queries; *storage.Router implements it.
type QueryExecutor interface {
	Execute(ctx context.Context, q storage.Query) (*storage.Result, error)
}

// UserRepository reads and writes users through whichever store is active.
type UserRepository struct {
	exec QueryExecutor
}

func NewUserRepository(exec QueryExecutor) *UserRepository {
	return &UserRepository{exec: exec}
}

// Save inserts a user and returns the id assigned by the store.
// Errors are the classified storage errors, e.g. storage.ErrUniqueViolation.
func (r *UserRepository) Save(ctx context.Context, u models.NewUser) (int64, error) {
	var phone any
	if u.Phone != nil {
		phone = *u.Phone
	}

	res, err := r.exec.Execute(ctx, storage.Query{
		Kind: storage.KindInsertUser,
		Args: []any{u.Username, u.Email, phone, u.PasswordHash},
	})
	if err != nil {
		return 0, err
	}
	return res.LastInsertID, nil
}

// GetByEmail returns the full row for email, or nil when there is none.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	res, err := r.exec.Execute(ctx, storage.Query{
		Kind: storage.KindSelectUserByEmail,
		Args: []any{email},
	})
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	user := res.Rows[0]
	return &user, nil
}

// List returns all users, newest first. Password hashes are not selected.
func (r *UserRepository) List(ctx context.Context) ([]models.UserDB, error) {
	res, err := r.exec.Execute(ctx, storage.Query{Kind: storage.KindListUsers})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}
