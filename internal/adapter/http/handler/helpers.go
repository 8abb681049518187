package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/iho/stockrecon/internal/adapter/http/dto"
	"github.com/iho/stockrecon/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, resp dto.ErrorResponse) {
	writeJSON(w, status, resp)
}

// mapDomainError maps reconciliation errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrExternal):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrParse),
		errors.Is(err, domain.ErrSchema),
		errors.Is(err, domain.ErrFormat),
		errors.Is(err, domain.ErrOrder):
		return http.StatusUnprocessableEntity
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
