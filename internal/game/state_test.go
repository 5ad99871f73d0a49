// internal/game/state_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/parlorgames/tabooo/internal/deck"
	"github.com/parlorgames/tabooo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeck(t *testing.T, n int) *deck.Deck {
	t.Helper()
	cards := make([]models.WordCard, n)
	for i := range cards {
		cards[i] = models.WordCard{
			GuessWord:  fmt.Sprintf("word%d", i),
			TabooWords: []string{"t1", "t2", "t3", "t4", "t5"},
		}
	}
	d := deck.New()
	require.NoError(t, d.Load(cards))
	return d
}

func newTestState(t *testing.T, players, teams, rounds, deckSize int) *State {
	t.Helper()
	labels := make([]string, teams)
	for i := range labels {
		labels[i] = string(rune('A' + i))
	}
	s := NewState(labels, rosterWith(players), testDeck(t, deckSize), rounds)
	s.AssignTeams()
	return s
}

func TestNewStateResetsScores(t *testing.T) {
	r := rosterWith(2)
	r.Players[0].Score = 7
	r.Players[1].Score = -3

	s := NewState([]string{"A", "B"}, r, testDeck(t, 3), 2)
	for _, p := range s.Players {
		assert.Zero(t, p.Score)
	}
	assert.Equal(t, 1, s.CurrentRound)
	assert.Equal(t, PhaseInit, s.CurrentPhase)
}

func TestScoreByTeamReadsFirstEnrolledPlayer(t *testing.T) {
	s := newTestState(t, 4, 2, 1, 3)
	// Team 0 holds players 0 and 2; team scores always move in lockstep, so
	// the first player's score stands in for the team.
	s.Players[0].Score = 5
	s.Players[2].Score = 5
	s.Players[1].Score = -1
	s.Players[3].Score = -1

	scores := s.ScoreByTeam()
	assert.Equal(t, 5, scores[0])
	assert.Equal(t, -1, scores[1])
}

func TestWrapAroundPointers(t *testing.T) {
	s := newTestState(t, 3, 2, 1, 3)

	assert.Equal(t, 1, s.NextTeamIndex())
	s.CurrentTeam = 1
	assert.Equal(t, 0, s.NextTeamIndex())

	s.CurrentPlayer = 2
	assert.Equal(t, 0, s.NextPlayerIndex())
}

func TestAdvanceOnEmptyCollectionsIsNoOp(t *testing.T) {
	s := NewState(nil, NewRoster(), testDeck(t, 2), 1)
	s.AdvanceTeamsAndPlayers()
	assert.Zero(t, s.CurrentTeam)
	assert.Zero(t, s.CurrentPlayer)
	assert.Equal(t, "", s.CurrentPlayerID())
}

func TestAdvanceTeamsAndPlayers(t *testing.T) {
	s := newTestState(t, 4, 2, 3, 3)
	s.AdvanceTeamsAndPlayers()
	assert.Equal(t, 1, s.CurrentTeam)
	assert.Equal(t, 1, s.CurrentPlayer)
	assert.Equal(t, 1, s.ActiveTeam)
	assert.Equal(t, 1, s.ActivePlayer)

	s.AdvanceTeamsAndPlayers()
	assert.Equal(t, 0, s.CurrentTeam, "team pointer wraps")
	assert.Equal(t, 2, s.CurrentPlayer, "player pointer keeps striding")
}

// Word draws never repeat within a single non-recycled window: for a deck of
// size K, at most K-1 draws accumulate before the used set is cleared.
func TestSetRandomWordRecycles(t *testing.T) {
	const deckSize = 4
	s := newTestState(t, 2, 2, 1, deckSize)

	seen := map[int]bool{}
	for i := 0; i < deckSize-1; i++ {
		s.SetRandomWord()
		assert.False(t, seen[s.WordIndex], "draw %d repeated index %d", i, s.WordIndex)
		seen[s.WordIndex] = true
		assert.Less(t, len(s.UsedWordIndices), deckSize)
	}

	// The next draw crosses the recycle threshold: the used set is reset
	// before drawing, so it holds exactly the fresh index.
	s.SetRandomWord()
	assert.Len(t, s.UsedWordIndices, 1)
	assert.Less(t, len(s.UsedWordIndices), deckSize)
	assert.Equal(t, s.UsedWordIndices[0], s.WordIndex)
	assert.Equal(t, fmt.Sprintf("word%d", s.WordIndex), s.CurrentWord.GuessWord)
}
