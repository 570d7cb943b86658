package middleware

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Failure is the envelope of every unsuccessful response.
type Failure struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func writeFailure(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, Failure{Message: message, Code: code})
}
