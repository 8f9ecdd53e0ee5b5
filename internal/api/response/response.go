// Package response provides helpers for writing JSON HTTP responses in a
// consistent shape across handlers.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx response. Details is optional
// context, usually the underlying error string.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as JSON under the given status code. A nil data
// writes the status code alone. Encoding failures are logged, not surfaced:
// by then the status line is already on the wire.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes an ErrorResponse under the given status code. Message
// should be stable and user-facing; details may carry the raw error.
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}
