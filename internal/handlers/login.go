package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/services"
)

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, email, password string) (string, *models.PublicUser, error)
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Checks the credentials and returns a JWT with the public user fields
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login Request"
// @Success 200 {object} models.LoginResponse "JWT token returned"
// @Failure 400 {object} models.ErrorResponse "Missing fields or invalid credentials"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Server error"
// @Router /login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest

		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		token, user, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				writeError(w, http.StatusBadRequest, "Email and Password are required")
			case errors.Is(err, services.ErrUserNotFound):
				writeError(w, http.StatusNotFound, "User not found")
			case errors.Is(err, services.ErrInvalidCredentials):
				writeError(w, http.StatusBadRequest, "Invalid credentials")
			default:
				logger.Log.Errorw("login failed", requestFields(r, "err", err)...)
				writeError(w, http.StatusInternalServerError, "Server error")
			}
			return
		}

		writeJSON(w, http.StatusOK, models.LoginResponse{
			Token: token,
			User:  *user,
		})
	}
}

// RegisterLoginHandler registers the login route
func RegisterLoginHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/login", h)
}
