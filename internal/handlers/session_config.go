// internal/handlers/session_config.go
package handlers

import (
	"encoding/json"
	"net/http"
)

// SessionConfig is the static session setup clients fetch once before
// joining. TurnSeconds is advisory: clients run their own visible countdown
// and report expiry back as an event.
type SessionConfig struct {
	Teams       []string `json:"teams"`
	NumRounds   int      `json:"num_rounds"`
	TurnSeconds int      `json:"turn_seconds"`
}

// SessionConfigHandler serves the session setup as JSON.
func SessionConfigHandler(cfg SessionConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg)
	}
}
