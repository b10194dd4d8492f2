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

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, email, phone, password string) error
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a user account. The email must be unique. The password is stored as a bcrypt hash.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body models.RegisterRequest true "User registration request"
// @Success 201 {object} models.RegisterResponse "User registered"
// @Failure 400 {object} models.ErrorResponse "Missing fields, duplicate email or registration failure"
// @Router /register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest

		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		err := svc.Register(r.Context(), req.Username, req.Email, req.Phone, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				writeError(w, http.StatusBadRequest, "Username, Email and Password are required")
			case errors.Is(err, services.ErrDuplicateEmail):
				writeError(w, http.StatusBadRequest, "This email is already registered.")
			default:
				logger.Log.Errorw("registration failed", requestFields(r, "err", err)...)
				writeError(w, http.StatusBadRequest, "Registration failed. Please check your data.")
			}
			return
		}

		writeJSON(w, http.StatusCreated, models.RegisterResponse{
			Message: "User registered",
		})
	}
}

// RegisterRegisterHandler registers the registration route
func RegisterRegisterHandler(r chi.Router, h http.HandlerFunc) {
	r.Post("/register", h)
}
