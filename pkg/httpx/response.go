package httpx

import (
	"encoding/json"
	"net/http"
)

// ValidationFailed is the error text of every field validation response.
const ValidationFailed = "Validation failed"

// ErrorBody is the envelope of every failed API call. Fields is set only
// for validation failures, keyed by JSON field or query parameter name.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON writes v as JSON with the given status code. Responses carry one
// user's todos, so they are marked no-store for shared caches.
// Encoding errors are discarded; use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Created writes a 201 with v and a Location header pointing at the new resource.
func Created(w http.ResponseWriter, location string, v any) {
	w.Header().Set("Location", location)
	JSON(w, http.StatusCreated, v)
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// JSONFieldErrors writes a 400 naming each rejected field.
func JSONFieldErrors(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: ValidationFailed, Fields: fields})
}

// JSONMessage writes {"message": message}.
func JSONMessage(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}
