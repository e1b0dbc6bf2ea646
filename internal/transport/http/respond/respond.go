package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shoplabs/shopcore/internal/apperrors"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps the error's kind to a status code and writes a JSON error body.
// Internal errors are logged with their cause but never leak it to clients.
func Error(w http.ResponseWriter, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindBusinessRule:
		JSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperrors.KindNotFound:
		JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		slog.Error("Internal error", "error", err)
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
