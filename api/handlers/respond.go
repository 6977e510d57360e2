package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/models"
)

// statusForKind maps the error taxonomy onto HTTP statuses.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindCompliance:
		return http.StatusUnprocessableEntity
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeResult serializes an operation envelope, picking the status from the
// fault kind on failure.
func writeResult(w http.ResponseWriter, result models.OperationResult) {
	w.Header().Set("Content-Type", "application/json")
	status := http.StatusOK
	if !result.Success && result.Error != nil {
		status = statusForKind(result.Error.Kind)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		zap.S().Errorw("failed to encode operation result", "error", err)
	}
}

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}
