// Package handlers provides shared JSON response helpers for HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes {"error": err.Error()} with the given status code.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	RespondMessage(w, logger, status, err.Error(), err)
}

// RespondMessage writes {"error": message} with the given status code and logs cause.
// Use it when the client-facing message differs from the underlying error.
func RespondMessage(w http.ResponseWriter, logger *slog.Logger, status int, message string, cause error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", cause)
	} else {
		logger.Warn("handler error", "status", status, "error", cause)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}
