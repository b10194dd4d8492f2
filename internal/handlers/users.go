package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

//go:generate mockgen -source=users.go -destination=users_mock.go -package=handlers

// UserLister defines the admin listing the service must implement.
type UserLister interface {
	List(ctx context.Context) ([]models.UserView, error)
}

// NewListUsersHandler returns an HTTP handler listing registered users.
// @Summary List users
// @Description Returns every registered user, newest first. Password hashes are never included.
// @Tags admin
// @Produce json
// @Success 200 {array} models.UserView
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Failed to fetch users"
// @Router /users [get]
// @Security BearerAuth
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to fetch users", requestFields(r, "err", err)...)
			writeError(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}
		if users == nil {
			users = []models.UserView{}
		}
		logger.Log.Infow("users listed", requestFields(r, "count", len(users))...)

		writeJSON(w, http.StatusOK, users)
	}
}

// RegisterListUsersHandler registers the user listing route
func RegisterListUsersHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/users", h)
}
