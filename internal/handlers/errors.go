package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/assets"
	"marketplace/internal/services"
)

// respondWithServiceError maps service sentinels onto HTTP responses. The
// merged not-found/no-permission signal keeps a single status and message
// so responses never reveal whether a record exists.
func respondWithServiceError(w http.ResponseWriter, err error) {
	var code int
	var errorCode string

	switch {
	case errors.Is(err, services.ErrValidation):
		code, errorCode = http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrConflict):
		code, errorCode = http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrInvalidCredentials):
		code, errorCode = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, services.ErrUnauthenticated):
		code, errorCode = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, services.ErrNotFound):
		code, errorCode = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrAlreadyRated):
		code, errorCode = http.StatusConflict, "already_rated"
	case errors.Is(err, assets.ErrStorage):
		code, errorCode = http.StatusInternalServerError, "storage_failure"
	default:
		code, errorCode = http.StatusInternalServerError, "internal_error"
	}

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "An internal error occurred"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
