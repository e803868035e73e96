package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
	"twitterapi/pkg/logger"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Detail interface{} `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeValidationError(w http.ResponseWriter, err *validation.Error) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Fields})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathID reads and checks a 36-character identifier from the route.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if err := validation.ValidateID(name, id); err != nil {
		var verr *validation.Error
		errors.As(err, &verr)
		writeValidationError(w, verr)
		return "", false
	}
	return id, true
}

// handleError maps service errors to status codes.
func handleError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User doesn't exist!")
	case errors.Is(err, domain.ErrTweetNotFound):
		writeError(w, http.StatusNotFound, "This tweet doesn't exist!")
	case errors.Is(err, domain.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Record already exists")
	default:
		log.ErrorContext(r.Context(), "Request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
