// internal/game/roster.go
package game

import (
	"github.com/parlorgames/tabooo/internal/models"
)

// Roster is the ordered set of players, insertion order = join order. The
// roster never rejects duplicate ids; id generation upstream (connection ids
// or client-generated stable ids) is what keeps them unique in practice.
type Roster struct {
	Players []*models.Player `json:"players"`
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// AddPlayer appends p to the end of the roster.
func (r *Roster) AddPlayer(p *models.Player) {
	r.Players = append(r.Players, p)
}

// RemovePlayerByID removes the first player whose id matches and returns the
// index it held, or -1 if no player matched.
func (r *Roster) RemovePlayerByID(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return i
		}
	}
	return -1
}

// PlayerIndexByID returns the index of the first player whose id matches, or
// -1 if none does.
func (r *Roster) PlayerIndexByID(id string) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// PlayerByID returns the first player whose id matches, or nil.
func (r *Roster) PlayerByID(id string) *models.Player {
	if i := r.PlayerIndexByID(id); i >= 0 {
		return r.Players[i]
	}
	return nil
}

// AssignTeams distributes players round-robin across numTeams teams in join
// order, starting at team 0. It sets each player's team field and returns the
// derived team-index -> player-indices mapping. Any prior assignment is
// overwritten.
func (r *Roster) AssignTeams(numTeams int) map[int][]int {
	byTeam := make(map[int][]int, numTeams)
	if numTeams <= 0 {
		return byTeam
	}
	for i, p := range r.Players {
		team := i % numTeams
		p.Team = team
		byTeam[team] = append(byTeam[team], i)
	}
	return byTeam
}

// ResetScores zeroes every player's score.
func (r *Roster) ResetScores() {
	for _, p := range r.Players {
		p.Score = 0
	}
}
