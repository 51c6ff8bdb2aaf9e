package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/evaluatorhub/backend/internal/domain"
	"github.com/evaluatorhub/backend/internal/service"
)

// envelope is the response body shape shared by every endpoint: a success
// flag plus whatever entity or message the endpoint carries.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps a service error to its HTTP shape. notFoundMsg names the
// resource for the 404 case; fallback is the generic 500 message so internal
// details never leak to the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg, fallback string) {
	var validation domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": validation.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{
			"success": false,
			"message": notFoundMsg,
		})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, envelope{
			"success": false,
			"message": "Invalid email or password",
		})
	case errors.Is(err, domain.ErrAccountInactive):
		writeJSON(w, http.StatusUnauthorized, envelope{
			"success": false,
			"message": "Your account is not active. Please contact support.",
		})
	case errors.Is(err, service.ErrEmailDispatch):
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"message": "Error sending password reset email. Please try again.",
		})
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"message": fallback,
		})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "Invalid request body",
		})
		return false
	}
	return true
}

// NotFound answers any unmatched /api/ path
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		"success": false,
		"message": "API endpoint not found",
	})
}
