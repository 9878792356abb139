package handler

// RESPONSE HELPERS:
// Every JSON response goes through writeJSON, every failure through
// writeError. Error bodies always have the same shape:
//
//	{"error": "Invalid data", "details": [{"field": "name", "message": "name is required"}]}
//	{"error": "Shopping item not found"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/shopping-list/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string                `json:"error"`
	Message string                `json:"message,omitempty"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it. internalMsg is the generic text used for a 500; the underlying
// error is logged, never sent to the client.
func (h *ItemHandler) writeError(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid data",
				Message: appErr.Message,
				Details: appErr.Details,
			})
			return
		case errors.Is(err, apperror.ErrInvalidID):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid item ID"})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Shopping item not found"})
			return
		case errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Conflict", Message: appErr.Message})
			return
		}
	}

	h.logger.Error(internalMsg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalMsg})
}
