// internal/handlers/audiochat.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AudioChatTokenHandler mints a signed join token for the third-party audio
// room used during a session. The token grants join-only permission and
// expires after 24 hours, which comfortably outlives any single game.
func AudioChatTokenHandler(logger *logrus.Logger, apiKey, secretKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		claims := jwt.MapClaims{
			"apikey":      apiKey,
			"permissions": []string{"allow_join"},
			"iat":         now.Unix(),
			"exp":         now.Add(24 * time.Hour).Unix(),
			"jti":         uuid.NewString(),
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(secretKey))
		if err != nil {
			logger.Errorf("audiochat token signing failed: %v", err)
			http.Error(w, "could not create token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": signed})
	}
}
