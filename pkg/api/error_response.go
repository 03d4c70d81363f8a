package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/logger"
)

// ErrorResponse represents a standard JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJSONError writes a JSON error response with the given status code and message
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	json.NewEncoder(w).Encode(response)
}

// WriteDomainError maps a gateway error to its status code and writes it.
// Backend failures reach the client as an opaque message; their detail is
// only logged.
func WriteDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := logger.FromContext(r.Context())

	var ve *domain.ValidationError
	var se *domain.StoreError
	switch {
	case errors.As(err, &ve):
		log.Info("Rejected request", logFields(op, zap.Error(err))...)
		WriteJSONError(w, http.StatusBadRequest, ve.Error())
	case domain.IsNotFound(err):
		log.Info("Not found", logFields(op, zap.Error(err))...)
		WriteJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConnectionPending):
		log.Warn("Backend not connected yet", logFields(op, zap.Error(err))...)
		w.Header().Set("Retry-After", "5")
		WriteJSONError(w, http.StatusServiceUnavailable, "backend connection pending")
	case errors.As(err, &se):
		log.Error("Backend failure", logFields(op, zap.String("backend_code", se.Code), zap.Error(err))...)
		WriteJSONError(w, http.StatusInternalServerError, op+" failed")
	default:
		log.Error("Request failed", logFields(op, zap.Error(err))...)
		WriteJSONError(w, http.StatusInternalServerError, op+" failed")
	}
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
