package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"projecthub/services"

	"go.uber.org/zap"
)

// Response is the envelope of every JSON body the API writes.
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Message: message, Data: data})
}

// statusFor maps service errors onto HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateProposal),
		errors.Is(err, services.ErrAlreadyCollaborator):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrMissingSecret):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotOwner),
		errors.Is(err, services.ErrNotAMember),
		errors.Is(err, services.ErrNotACollaborator):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrInvalidInviteCode):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, status, "Internal server error", nil)
		return
	}
	writeJSON(w, status, err.Error(), nil)
}
