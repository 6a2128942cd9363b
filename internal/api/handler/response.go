package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/service"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeResolveError reports a pipeline failure with its stable code.
func writeResolveError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), ErrorResponse{
		Error:   err.Error(),
		Code:    domain.ErrorCode(err),
		Message: domain.ErrorMessage(err),
	})
}

// statusForError maps resolution errors onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidURL),
		errors.Is(err, domain.ErrInvalidPostID),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrContentPrivate),
		errors.Is(err, domain.ErrContentAgeRestricted):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrContentUnavailable),
		errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFetchEmpty),
		errors.Is(err, domain.ErrNoVideoVariants):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
