package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/middlewares"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

const msgInvalidBody = "invalid request body"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON decodes at most maxBodyBytes of the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// requestFields tags a log line with the request id and, behind auth, the caller.
func requestFields(r *http.Request, kv ...any) []any {
	fields := []any{"request_id", middlewares.RequestIDFromContext(r.Context())}
	if id, ok := middlewares.UserIDFromContext(r.Context()); ok {
		fields = append(fields, "user_id", id)
	}
	return append(fields, kv...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}
