package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// writeJSONError writes the structured error envelope with the correct
// Content-Type. Shape matches handler responses so clients see one format.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":       msg,
		"status_code": status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
