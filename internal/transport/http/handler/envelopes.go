package handler

import (
	"encoding/json"
	"net/http"
)

// MessageEnvelope is the generic response wrapper. Code is a stable machine-readable error kind.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// OutputEnvelope wraps recommendation, recipe and saved-recipe payloads.
type OutputEnvelope struct {
	Output interface{} `json:"output"`
}

// TokenEnvelope wraps login responses.
type TokenEnvelope struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MaskedEmailEnvelope wraps masked-email lookups.
type MaskedEmailEnvelope struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, Code: code})
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", codeInvalidBody)
		return false
	}
	return true
}
