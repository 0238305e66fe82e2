package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/app/users"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

// writeAppError maps an application-layer error onto the response. Anything
// that is not a typed app error is logged and becomes an opaque 500.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var tripErr *trips.Error
	if errors.As(err, &tripErr) {
		writeError(w, r, tripErr.Status, tripErr.Code, tripErr.Message, tripErr.Details)
		return
	}
	var userErr *users.Error
	if errors.As(err, &userErr) {
		writeError(w, r, userErr.Status, userErr.Code, userErr.Message, userErr.Details)
		return
	}
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestId", middleware.GetReqID(r.Context())).
		Msg("unhandled application error")
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
