package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/report"
	"github.com/mmynk/assetsplitter/internal/session"
)

// Shown to the user when an import is rejected.
const msgInvalidImport = "Invalid JSON file format"

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Message: details})
}

// mapError maps domain errors to HTTP status codes.
func mapError(err error) int {
	switch {
	case errors.Is(err, session.ErrAssetNotFound):
		return http.StatusNotFound
	case errors.Is(err, codec.ErrInvalidFormat),
		errors.Is(err, codec.ErrInvalidShape),
		errors.Is(err, session.ErrMissingPartyNames),
		errors.Is(err, report.ErrUnknownKind):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes an optional JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
