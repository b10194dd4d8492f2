package services

import (
	"context"
	"fmt"

	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

//go:generate mockgen -source=users.go -destination=users_mock.go -package=services

// UserLister lists stored users.
type UserLister interface {
	List(ctx context.Context) ([]models.UserDB, error)
}

// UserListService is the read-only admin view of registered users.
type UserListService struct {
	lister UserLister
}

func NewUserListService(lister UserLister) *UserListService {
	return &UserListService{lister: lister}
}

// List returns every user, newest first, without password hashes.
func (svc *UserListService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := svc.lister.List(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}
