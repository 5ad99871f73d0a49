// internal/game/machine_test.go
package game

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine() *Machine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewMachine(logger)
}

func TestParseEvent(t *testing.T) {
	ev, ok := ParseEvent("correctGuess")
	require.True(t, ok)
	assert.Equal(t, EventCorrectGuess, ev)

	_, ok = ParseEvent("discardCard")
	assert.False(t, ok)

	_, ok = ParseEvent("")
	assert.False(t, ok, "the empty chain marker is not a wire event")
}

func TestStartGameDrawsFirstWord(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 3)

	require.True(t, m.Dispatch(s, EventStartGame, ""))
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
	assert.NotEmpty(t, s.CurrentWord.GuessWord, "entering guess_word draws a card")
	assert.Len(t, s.UsedWordIndices, 1)
	assert.Equal(t, "Team 0: Begin Game!", s.StatusMessage)
}

func TestCorrectGuessScoresWholeTeamOnly(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))
	firstWord := s.WordIndex

	require.True(t, m.Dispatch(s, EventCorrectGuess, "p0"))

	// Players 0 and 2 are team 0; 1 and 3 are team 1.
	assert.Equal(t, 1, s.Players[0].Score)
	assert.Equal(t, 1, s.Players[2].Score)
	assert.Zero(t, s.Players[1].Score, "other team's scores are never touched")
	assert.Zero(t, s.Players[3].Score)

	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
	assert.NotEqual(t, firstWord, s.WordIndex, "a fresh card follows each guess")
	assert.Equal(t, "Correct! Team 0 scored a point.", s.StatusMessage)
}

func TestPassOrBuzzMayGoNegative(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))

	require.True(t, m.Dispatch(s, EventPassOrBuzz, "p0"))
	require.True(t, m.Dispatch(s, EventPassOrBuzz, "p0"))

	assert.Equal(t, -2, s.Players[0].Score)
	assert.Equal(t, -2, s.Players[2].Score)
	assert.Zero(t, s.Players[1].Score)
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
}

func TestTimerUpFromBystanderIsIgnored(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 1, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))
	statusBefore := s.StatusMessage
	wordBefore := s.WordIndex

	// A stale countdown on a non-current player's client fires. The event is
	// a benign race, not an error: accepted, but the round continues.
	require.True(t, m.Dispatch(s, EventTimerUp, "p3"))
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
	assert.Equal(t, statusBefore, s.StatusMessage)
	assert.Equal(t, wordBefore, s.WordIndex)
}

func TestRoundRotation(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 3, 5)
	require.True(t, m.Dispatch(s, EventStartGame, ""))

	// Round 1 ends: current player's timer expires.
	require.True(t, m.Dispatch(s, EventTimerUp, "p0"))
	assert.Equal(t, PhaseWaitForNextRound, s.CurrentPhase)
	assert.Equal(t, 2, s.CurrentRound)
	assert.Equal(t, 1, s.CurrentTeam)
	assert.Equal(t, 1, s.CurrentPlayer)
	assert.Equal(t, 1, s.ActiveTeam)
	assert.Equal(t, 1, s.ActivePlayer)

	// Arming state holds until someone presses the button.
	require.True(t, m.Dispatch(s, EventWaitForNextRound, "p1"))
	assert.Equal(t, PhaseWaitForNextRound, s.CurrentPhase)

	require.True(t, m.Dispatch(s, EventStartNextRound, "p1"))
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
	assert.Equal(t, "Round 2 has started!", s.StatusMessage)
}

// The full scenario from the original game: deck of 3, two teams of two, one
// round. Guess twice, the current player's timer expires, and the game
// cascades straight through time_up into final scoring.
func TestSingleRoundGameToFinalScoring(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 1, 3)

	require.True(t, m.Dispatch(s, EventStartGame, ""))
	require.True(t, m.Dispatch(s, EventCorrectGuess, "p0"))
	require.True(t, m.Dispatch(s, EventCorrectGuess, "p0"))
	assert.Equal(t, 2, s.Players[0].Score)
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)

	require.True(t, m.Dispatch(s, EventTimerUp, "p0"))

	assert.Equal(t, PhaseEndGame, s.CurrentPhase)
	assert.Contains(t, s.StatusMessage, "GAME OVER!")
	assert.Contains(t, s.StatusMessage, "Team 0 score: 2")
	assert.Contains(t, s.StatusMessage, "Team 1 score: 0")
}

func TestEndGameIsAbsorbing(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 1, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))
	require.True(t, m.Dispatch(s, EventTimerUp, "p0"))
	require.Equal(t, PhaseEndGame, s.CurrentPhase)

	for _, ev := range []Event{EventStartGame, EventCorrectGuess, EventPassOrBuzz, EventTimerUp, EventStartNextRound} {
		assert.False(t, m.Dispatch(s, ev, "p0"), "%s must be rejected after end_game", ev)
		assert.Equal(t, PhaseEndGame, s.CurrentPhase)
	}

	// finalScoring itself remains accepted and loops in place.
	assert.True(t, m.Dispatch(s, EventFinalScoring, "p0"))
	assert.Equal(t, PhaseEndGame, s.CurrentPhase)
}

func TestInvalidEventLeavesStateUntouched(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))

	before := *s
	assert.False(t, m.Dispatch(s, EventStartNextRound, "p0"))
	assert.Equal(t, before.CurrentPhase, s.CurrentPhase)
	assert.Equal(t, before.StatusMessage, s.StatusMessage)
	assert.Equal(t, before.WordIndex, s.WordIndex)
	assert.Equal(t, before.CurrentRound, s.CurrentRound)
}

// Every dispatch, whatever the event stream, lands in a defined phase.
func TestPhaseAlwaysDefined(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 5)

	events := []Event{
		EventStartGame, EventCorrectGuess, EventTimerUp, EventPassOrBuzz,
		EventStartNextRound, EventWaitForNextRound, EventShowNextCard,
		EventCheckGameStatus, EventChangeActiveTeam, EventFinalScoring,
	}
	for round := 0; round < 5; round++ {
		for _, ev := range events {
			m.Dispatch(s, ev, s.CurrentPlayerID())
			assert.GreaterOrEqual(t, int(s.CurrentPhase), int(PhaseInit))
			assert.LessOrEqual(t, int(s.CurrentPhase), int(PhaseEndGame))
		}
	}
}

// Removing the player whose turn it is does not revalidate the turn pointers.
// This pins the observed gap: the pointer silently shifts onto whichever
// player now occupies the index.
func TestCurrentPlayerRemovalLeavesStalePointers(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 2, 3)
	require.True(t, m.Dispatch(s, EventStartGame, ""))
	require.Equal(t, "p0", s.CurrentPlayerID())

	idx := s.RemovePlayerByID("p0")
	assert.Equal(t, 0, idx)
	assert.Len(t, s.Players, 3)

	assert.Equal(t, 0, s.CurrentPlayer, "pointer is not revalidated")
	assert.Equal(t, "p1", s.CurrentPlayerID(), "pointer now lands on a different player")

	// The departed player can no longer end the round; the one who inherited
	// the index can.
	require.True(t, m.Dispatch(s, EventTimerUp, "p0"))
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)
	require.True(t, m.Dispatch(s, EventTimerUp, "p1"))
	assert.Equal(t, PhaseWaitForNextRound, s.CurrentPhase)
}

// Scoring for a team holding a stale roster index must skip it, not index out
// of range. With 4 players and 2 teams, team 1 holds indices 1 and 3; removing
// one player leaves index 3 dangling past the shrunken roster.
func TestScoringAfterRemovalSkipsStaleIndices(t *testing.T) {
	m := newTestMachine()
	s := newTestState(t, 4, 2, 3, 6)
	require.True(t, m.Dispatch(s, EventStartGame, ""))

	require.Equal(t, 0, s.RemovePlayerByID("p0"))
	require.Len(t, s.Players, 3)

	// Hand the turn to team 1: the index inheritor ends the round, then the
	// next round starts.
	require.True(t, m.Dispatch(s, EventTimerUp, "p1"))
	require.True(t, m.Dispatch(s, EventStartNextRound, ""))
	require.Equal(t, 1, s.CurrentTeam)

	require.True(t, m.Dispatch(s, EventCorrectGuess, ""))
	assert.Equal(t, 1, s.Players[1].Score, "index 1 still resolves; whoever holds it now scores")
	assert.Zero(t, s.Players[2].Score, "index 3 is stale and skipped, not remapped onto index 2's player")
	assert.Equal(t, PhaseGuessWord, s.CurrentPhase)

	require.True(t, m.Dispatch(s, EventPassOrBuzz, ""))
	assert.Zero(t, s.Players[1].Score)
	assert.Zero(t, s.Players[2].Score)
}
