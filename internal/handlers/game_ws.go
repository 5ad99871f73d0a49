// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlorgames/tabooo/internal/middleware"
)

// inboundMessage is the envelope for everything a browser client sends over
// the session socket. Type selects the action; the remaining fields are
// populated per type.
type inboundMessage struct {
	Type string `json:"type"`

	// client-event fields. ClientPhase is the phase the client's replica
	// believes it is in; the server validates against its own phase and only
	// uses this for drift diagnostics.
	EventName   string `json:"event_name,omitempty"`
	ClientPhase int    `json:"client_phase,omitempty"`
	ClientID    string `json:"client_id,omitempty"`

	// add-player-to-game carries the client-generated stable id;
	// update-player-name carries the id plus the chosen name.
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
}

// GameWSHandler upgrades the HTTP connection to a WebSocket session, enrolls
// the connection as a player, and runs the read loop until the client goes
// away. Every inbound message is routed to the coordinator, which owns all
// state mutation and fanout.
func GameWSHandler(logger *logrus.Logger, srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		connID := uuid.NewString()
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, connID)

		srv.HandleConnect(connID, c)

		// playerID tracks the id this socket is currently enrolled under; it
		// changes once if the client adopts a stable id.
		playerID := connID
		transient := true

		readErr := readSessionMessages(r.Context(), c, srv, logger, &playerID, &transient)

		if status := websocket.CloseStatus(readErr); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			readErr = nil
		}
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, connID, readErr)

		srv.HandleDisconnect(playerID, transient)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readSessionMessages consumes messages until the connection dies and routes
// each one onto the coordinator. Returns the error that ended the loop.
func readSessionMessages(ctx context.Context, c *websocket.Conn, srv *GameServer, logger *logrus.Logger, playerID *string, transient *bool) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("non-text message from %s, ignoring", *playerID)
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid JSON from %s: %v", *playerID, err)
			sendWsError(c, "Invalid JSON format.")
			continue
		}

		switch msg.Type {
		case "start-game":
			srv.HandleStartGame()

		case "client-event":
			clientID := msg.ClientID
			if clientID == "" {
				clientID = *playerID
			}
			srv.HandleClientEvent(msg.EventName, msg.ClientPhase, clientID)

		case "update-player-name":
			pid := msg.PlayerID
			if pid == "" {
				pid = *playerID
			}
			srv.HandleUpdatePlayerName(pid, msg.Name)

		case "pause-game":
			srv.HandlePause()

		case "resume-game":
			srv.HandleResume()

		case "add-player-to-game":
			if msg.PlayerID != "" && msg.PlayerID != *playerID {
				srv.HandleAdoptID(*playerID, msg.PlayerID)
				*playerID = msg.PlayerID
				*transient = false
			}

		case "ping":
			sendWsMessage(c, map[string]string{"type": "pong"})

		default:
			logger.Warnf("unknown message type %q from %s", msg.Type, *playerID)
			sendWsError(c, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

// sendWsMessage marshals a message and writes it to one client with a write
// timeout.
func sendWsMessage(c *websocket.Conn, message any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(ctx, websocket.MessageText, data)
}

// sendWsError sends a structured error message to one client.
func sendWsError(c *websocket.Conn, errorMsg string) {
	sendWsMessage(c, map[string]any{
		"type":    "error",
		"message": errorMsg,
	})
}
