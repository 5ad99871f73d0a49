// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs every request's method, path, duration and remote
// address through the shared logger.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect records an accepted WebSocket upgrade.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, connID string) {
	logger.WithFields(logrus.Fields{
		"remote": remoteAddr,
		"conn":   connID,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect records a closed WebSocket session, with the read
// error that ended it when there was one.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, connID string, err error) {
	fields := logrus.Fields{
		"remote": remoteAddr,
		"conn":   connID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
