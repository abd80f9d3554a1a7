package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// errorStatus maps service errors to a status code and client message.
// Anything unrecognized is reported as 500 without details.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusBadRequest, "User exists"
	case errors.Is(err, common.ErrInvalidOrExpiredToken):
		// TODO: stop echoing the codec's reason once the frontend no longer shows it
		return http.StatusBadRequest, "Error: " + err.Error()
	case errors.Is(err, common.ErrNoPendingRegistration):
		return http.StatusBadRequest, "No pending registration"
	case errors.Is(err, common.ErrInvalidOtp):
		return http.StatusBadRequest, "Invalid OTP"
	case errors.Is(err, common.ErrEmailDelivery):
		return http.StatusBadGateway, "Could not send OTP email"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "Token has expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid token"
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "Missing Authorization Header"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "Admin access required"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeMessage(w, status, msg)
}
