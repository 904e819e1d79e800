package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kaayakalpa/healthfinder/internal/api/middleware"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	apperrors "github.com/kaayakalpa/healthfinder/pkg/errors"
)

// maxJSONBody bounds every JSON request body
const maxJSONBody = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

var statusByErrorType = map[apperrors.ErrorType]int{
	apperrors.ErrorTypeNotFound:     http.StatusNotFound,
	apperrors.ErrorTypeValidation:   http.StatusBadRequest,
	apperrors.ErrorTypeConflict:     http.StatusConflict,
	apperrors.ErrorTypeUnauthorized: http.StatusUnauthorized,
	apperrors.ErrorTypeForbidden:    http.StatusForbidden,
	apperrors.ErrorTypeRateLimited:  http.StatusTooManyRequests,
	apperrors.ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	apperrors.ErrorTypeInternal:     http.StatusInternalServerError,
	apperrors.ErrorTypeExternal:     http.StatusBadGateway,
}

// respondWithAppError maps service errors onto HTTP statuses. Errors that are
// not AppErrors are logged and reported as a generic server error.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	status, ok := statusByErrorType[appErr.Type]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	respondWithError(w, status, appErr.Message)
}

// decodeJSON reads a JSON body into dst and writes a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// currentUser returns the authenticated caller, writing a 401 when there is none
func currentUser(w http.ResponseWriter, r *http.Request) (*entities.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, no token")
		return nil, false
	}
	return user, true
}
