package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/netflox-api/internal/models"
	"github.com/sbilibin2017/netflox-api/internal/storage"
)

//go:generate mockgen -source=status.go -destination=status_mock.go -package=handlers

// StatusReporter reports which store is serving queries.
type StatusReporter interface {
	State() storage.State
}

// NewStatusHandler returns an HTTP handler reporting the active credential store.
// @Summary Store status
// @Description Reports whether queries go to the primary or the fallback store
// @Tags status
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /status [get]
func NewStatusHandler(reporter StatusReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.StatusResponse{
			Database: reporter.State().String(),
		})
	}
}

// RegisterStatusHandler registers the status route
func RegisterStatusHandler(r chi.Router, h http.HandlerFunc) {
	r.Get("/status", h)
}
