// internal/handlers/qr.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

// JoinQRHandler serves a PNG QR code encoding the public join URL so players
// can scan their way into a running session from a shared screen.
func JoinQRHandler(logger *logrus.Logger, joinURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
		if err != nil {
			logger.Errorf("QR encode failed: %v", err)
			http.Error(w, "could not generate QR code", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "max-age=86400")
		_, _ = w.Write(png)
	}
}
