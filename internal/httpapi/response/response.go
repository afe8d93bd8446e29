// Package response provides the JSON envelope helpers the HTTP surface
// uses, trimmed from internal/api/response/response.go to the shapes
// spec §6 actually specifies: `{message: ...}` / `{error: string}`.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func JSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func Message(w http.ResponseWriter, logger *slog.Logger, status int, message any) {
	JSON(w, logger, status, map[string]any{"message": message})
}

func Error(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	JSON(w, logger, status, map[string]string{"error": message})
}

func BadRequest(w http.ResponseWriter, logger *slog.Logger, message string) {
	Error(w, logger, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, logger *slog.Logger, message string) {
	Error(w, logger, http.StatusNotFound, message)
}

func InternalError(w http.ResponseWriter, logger *slog.Logger, message string) {
	Error(w, logger, http.StatusInternalServerError, message)
}
