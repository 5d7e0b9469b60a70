// Package api holds the JSON response plumbing shared by all handlers.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the flat error shape every failed request returns.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON serialises v as JSON and writes it to w with the given HTTP
// status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes an {"error": msg} body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// Internal logs err server-side and writes a generic 500 response; the
// underlying failure is never sent to the client.
func Internal(w http.ResponseWriter, op string, err error) {
	slog.Error("internal error", "op", op, "error", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
