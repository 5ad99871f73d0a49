// internal/models/player.go
package models

import (
	"github.com/coder/websocket"
)

// Player holds one participant's identity, team assignment and score.
// The roster owns Player values; clients only ever receive read-only mirrors
// inside state snapshots. The name is late-bound because the browser prompts
// for it after the connection is already established.
type Player struct {
	ID        string          `json:"pid"`
	Name      string          `json:"name"`
	Team      int             `json:"team"`
	Score     int             `json:"score"`
	Connected bool            `json:"connected"`
	Conn      *websocket.Conn `json:"-"`
}

// IncrementScore adds one point and returns the new score.
func (p *Player) IncrementScore() int {
	p.Score++
	return p.Score
}

// DecrementScore removes one point and returns the new score. Scores are
// allowed to go negative.
func (p *Player) DecrementScore() int {
	p.Score--
	return p.Score
}
