// internal/game/state.go
package game

import (
	"github.com/parlorgames/tabooo/internal/deck"
	"github.com/parlorgames/tabooo/internal/models"
)

// State is the single authoritative game snapshot, owned by the server
// process. Clients hold replicas that are wholesale-replaced on every
// broadcast; nothing in here is ever mutated client-side.
//
// All mutation happens through the phase/turn methods below and the machine
// handlers that call them; queries never mutate.
type State struct {
	*Roster

	Teams         []string      `json:"teams"`
	PlayersByTeam map[int][]int `json:"players_each_team"`

	CurrentRound int `json:"current_round"`
	NumRounds    int `json:"num_rounds"`

	// CurrentTeam/CurrentPlayer track whose nominal turn it is; the active
	// pair tracks who is actually performing the action right now. They are
	// normally equal but modeled separately because some phases decouple them.
	CurrentTeam   int `json:"current_team"`
	CurrentPlayer int `json:"current_player"`
	ActiveTeam    int `json:"active_team"`
	ActivePlayer  int `json:"active_player"`

	CurrentPhase  Phase `json:"current_phase"`
	PreviousPhase Phase `json:"previous_phase"`

	CurrentWord     models.WordCard `json:"word"`
	WordIndex       int             `json:"word_index"`
	UsedWordIndices []int           `json:"used_words"`

	// StatusMessage describes the last transition's outcome and is re-sent
	// with every broadcast for the UI's info banner.
	StatusMessage string `json:"state_status"`

	deck *deck.Deck
}

// NewState builds a fresh game over the given roster and deck. All player
// scores are reset; team assignment happens separately via AssignTeams.
func NewState(teams []string, roster *Roster, d *deck.Deck, numRounds int) *State {
	roster.ResetScores()
	return &State{
		Roster:          roster,
		Teams:           teams,
		PlayersByTeam:   make(map[int][]int),
		CurrentRound:    1,
		NumRounds:       numRounds,
		UsedWordIndices: []int{},
		deck:            d,
	}
}

// AssignTeams re-derives PlayersByTeam from the roster, round-robin across
// len(Teams) teams. Called once per game start.
func (s *State) AssignTeams() {
	s.PlayersByTeam = s.Roster.AssignTeams(len(s.Teams))
}

// ScoreByTeam reads the score of the first player enrolled in each team. All
// players on a team share one score value because increments are always
// applied to the whole team at once.
func (s *State) ScoreByTeam() map[int]int {
	scores := make(map[int]int, len(s.PlayersByTeam))
	for team, indices := range s.PlayersByTeam {
		if len(indices) == 0 || indices[0] >= len(s.Players) {
			continue
		}
		scores[team] = s.Players[indices[0]].Score
	}
	return scores
}

// PlayersInTeam returns the player indices enrolled in team.
func (s *State) PlayersInTeam(team int) []int {
	return s.PlayersByTeam[team]
}

// NextTeamIndex returns the team after CurrentTeam, wrapping around.
func (s *State) NextTeamIndex() int {
	if len(s.Teams) == 0 {
		return s.CurrentTeam
	}
	return (s.CurrentTeam + 1) % len(s.Teams)
}

// NextPlayerIndex returns the player after CurrentPlayer, wrapping around.
func (s *State) NextPlayerIndex() int {
	if len(s.Players) == 0 {
		return s.CurrentPlayer
	}
	return (s.CurrentPlayer + 1) % len(s.Players)
}

// CurrentPlayerID returns the id of the player whose turn it nominally is, or
// "" when the roster is empty or the pointer is stale.
func (s *State) CurrentPlayerID() string {
	if s.CurrentPlayer < 0 || s.CurrentPlayer >= len(s.Players) {
		return ""
	}
	return s.Players[s.CurrentPlayer].ID
}

// AdvanceCurrentTeam moves the nominal turn to the next team, and with it the
// nominal player pointer. No-op on empty collections.
func (s *State) AdvanceCurrentTeam() {
	if len(s.Teams) > 0 {
		s.CurrentTeam = (s.CurrentTeam + 1) % len(s.Teams)
	}
	if len(s.Players) > 0 {
		s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
	}
}

// AdvanceActiveTeam moves the active pair the same way.
func (s *State) AdvanceActiveTeam() {
	if len(s.Teams) > 0 {
		s.ActiveTeam = (s.ActiveTeam + 1) % len(s.Teams)
	}
	if len(s.Players) > 0 {
		s.ActivePlayer = (s.ActivePlayer + 1) % len(s.Players)
	}
}

// AdvanceTeamsAndPlayers moves both the current and active pairs forward.
func (s *State) AdvanceTeamsAndPlayers() {
	s.AdvanceCurrentTeam()
	s.AdvanceActiveTeam()
}

// AdvanceRound increments the round counter.
func (s *State) AdvanceRound() {
	s.CurrentRound++
}

// SetRandomWord picks a fresh card index from the deck, avoiding indices used
// this deck-cycle, and records a copy of the card as the current word. The
// used set is recycled once it grows within one slot of the deck size, so a
// free index always exists.
func (s *State) SetRandomWord() {
	if len(s.UsedWordIndices) >= s.deck.Size()-1 {
		s.UsedWordIndices = s.UsedWordIndices[:0]
	}
	idx := s.deck.Draw(s.UsedWordIndices)
	s.WordIndex = idx
	s.UsedWordIndices = append(s.UsedWordIndices, idx)
	s.CurrentWord = s.deck.Card(idx)
}

// setPhase records the transition, keeping the previous phase for the UI.
func (s *State) setPhase(p Phase) {
	s.PreviousPhase = s.CurrentPhase
	s.CurrentPhase = p
}
