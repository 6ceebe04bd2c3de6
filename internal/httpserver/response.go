package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"adboard/backend/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type errorResponse struct {
	Error any `json:"error"`
}

type envelope struct {
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

type idData struct {
	ID int64 `json:"id"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeDone(w http.ResponseWriter, id int64) {
	writeJSON(w, http.StatusOK, envelope{Msg: "done", Data: idData{ID: id}})
}

func writeUpdated(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Msg: "updated"})
}

func writeDeleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps err to its status code. Only entity errors expose their
// message; anything else is logged and reported generically.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var entityErr *domain.Error
	if status != http.StatusInternalServerError && errors.As(err, &entityErr) {
		writeError(w, status, entityErr.Error())
		return
	}

	log.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
