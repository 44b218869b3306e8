package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorJSON is the uniform failure payload.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{"ok": false, "error": msg})
}

// requirePost rejects non-POST requests on mutating endpoints.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		errorJSON(w, http.StatusMethodNotAllowed, "post required")
		return false
	}
	return true
}
