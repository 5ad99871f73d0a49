// internal/game/machine.go
package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Phase is one state of the turn/round state machine. Values are stable wire
// ids; clients echo them back with every event.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseGuessWord
	PhaseTimeUp
	PhaseChangeActiveTeam
	PhaseWaitForNextRound
	PhaseEndGame
)

func (p Phase) String() string {
	if p < PhaseInit || p > PhaseEndGame {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseTable[p].name
}

// PhaseKind controls the cascade: interactive phases wait for a human- or
// timer-triggered event, housekeeping phases run their entry action and
// immediately chain onward, and the terminal phase absorbs everything.
type PhaseKind int

const (
	KindHousekeeping PhaseKind = iota
	KindInteractive
	KindTerminal
)

// Event identifies a state-machine event. Using a closed enum instead of raw
// event-name strings gives the per-phase handler tables compile-time
// exhaustiveness; ParseEvent is the only place wire names are interpreted.
type Event int

const (
	EventNone Event = iota
	EventStartGame
	EventShowNextCard
	EventCorrectGuess
	EventPassOrBuzz
	EventTimerUp
	EventCheckGameStatus
	EventChangeActiveTeam
	EventWaitForNextRound
	EventStartNextRound
	EventFinalScoring
)

var eventNames = map[Event]string{
	EventNone:             "",
	EventStartGame:        "startGame",
	EventShowNextCard:     "showNextCard",
	EventCorrectGuess:     "correctGuess",
	EventPassOrBuzz:       "passOrBuzz",
	EventTimerUp:          "timerUp",
	EventCheckGameStatus:  "checkGameStatus",
	EventChangeActiveTeam: "changeActiveTeam",
	EventWaitForNextRound: "waitForNextRound",
	EventStartNextRound:   "startNextRound",
	EventFinalScoring:     "finalScoring",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ParseEvent maps a wire event name onto the enum. The second return is false
// for names no phase could ever accept.
func ParseEvent(name string) (Event, bool) {
	for ev, n := range eventNames {
		if ev != EventNone && n == name {
			return ev, true
		}
	}
	return EventNone, false
}

// handlerFunc executes one event against the state and returns the phase to
// enter plus the event to chain into it with. EventNone means "wait here".
type handlerFunc func(s *State, ev Event, clientID string) (Phase, Event)

// phaseSpec describes one row of the transition table: which events the phase
// accepts, which handler runs for each, and which phases each event may lead
// to (checkGameStatus is the only branching event; index 1 is its end-game
// branch).
type phaseSpec struct {
	name        string
	kind        PhaseKind
	entry       Event
	handlers    map[Event]handlerFunc
	transitions map[Event][]Phase
}

// phaseTable is populated in init: the handler bodies read the table through
// stepTransition, so a package-level composite literal would form an
// initialization cycle.
var phaseTable [PhaseEndGame + 1]phaseSpec

func init() {
	phaseTable = [PhaseEndGame + 1]phaseSpec{
		PhaseInit: {
			name:  "init",
			kind:  KindHousekeeping,
			entry: EventStartGame,
			handlers: map[Event]handlerFunc{
				EventStartGame: handleStartGame,
			},
			transitions: map[Event][]Phase{
				EventStartGame: {PhaseGuessWord},
			},
		},
		PhaseGuessWord: {
			name:  "guess_word",
			kind:  KindInteractive,
			entry: EventShowNextCard,
			handlers: map[Event]handlerFunc{
				EventCorrectGuess: handleCorrectGuess,
				EventPassOrBuzz:   handlePassOrBuzz,
				EventTimerUp:      handleTimerUp,
				EventShowNextCard: handleShowNextCard,
			},
			transitions: map[Event][]Phase{
				EventCorrectGuess: {PhaseGuessWord},
				EventPassOrBuzz:   {PhaseGuessWord},
				EventTimerUp:      {PhaseTimeUp},
				EventShowNextCard: {PhaseGuessWord},
			},
		},
		PhaseTimeUp: {
			name:  "time_up",
			kind:  KindHousekeeping,
			entry: EventCheckGameStatus,
			handlers: map[Event]handlerFunc{
				EventCheckGameStatus: handleCheckGameStatus,
			},
			transitions: map[Event][]Phase{
				EventCheckGameStatus: {PhaseChangeActiveTeam, PhaseEndGame},
			},
		},
		PhaseChangeActiveTeam: {
			name:  "change_active_team",
			kind:  KindHousekeeping,
			entry: EventChangeActiveTeam,
			handlers: map[Event]handlerFunc{
				EventChangeActiveTeam: handleChangeActiveTeam,
			},
			transitions: map[Event][]Phase{
				EventChangeActiveTeam: {PhaseWaitForNextRound},
			},
		},
		PhaseWaitForNextRound: {
			name:  "wait_for_next_round",
			kind:  KindInteractive,
			entry: EventWaitForNextRound,
			handlers: map[Event]handlerFunc{
				EventWaitForNextRound: handleWaitForNextRound,
				EventStartNextRound:   handleStartNextRound,
			},
			transitions: map[Event][]Phase{
				EventWaitForNextRound: {PhaseWaitForNextRound},
				EventStartNextRound:   {PhaseGuessWord},
			},
		},
		PhaseEndGame: {
			name:  "end_game",
			kind:  KindTerminal,
			entry: EventFinalScoring,
			handlers: map[Event]handlerFunc{
				EventFinalScoring: handleFinalScoring,
			},
			transitions: map[Event][]Phase{
				EventFinalScoring: {PhaseEndGame},
			},
		},
	}
}

// maxCascade bounds the housekeeping chain so a misconfigured table that
// cycles between housekeeping phases can never hang a dispatch.
const maxCascade = 8

// Machine executes events against a State. It holds no game data itself, only
// a logger; the coordinator passes the state in explicitly so there is exactly
// one writer.
type Machine struct {
	log *logrus.Logger
}

// NewMachine returns a machine logging through log.
func NewMachine(log *logrus.Logger) *Machine {
	if log == nil {
		log = logrus.New()
	}
	return &Machine{log: log}
}

// Dispatch validates ev against the current phase's accepted-event set, runs
// its handler, then follows the housekeeping cascade: as long as the chain
// enters a housekeeping phase with a non-empty entry event, the entry handler
// runs immediately. Interactive and terminal phases run their entry action
// once and stop. Returns false, leaving the state untouched, when the event is
// not accepted in the current phase.
func (m *Machine) Dispatch(s *State, ev Event, clientID string) bool {
	spec := phaseTable[s.CurrentPhase]
	h, ok := spec.handlers[ev]
	if !ok {
		m.log.WithFields(logrus.Fields{
			"phase":  s.CurrentPhase.String(),
			"event":  ev.String(),
			"client": clientID,
		}).Warn("event not valid for current phase")
		return false
	}

	next, chain := h(s, ev, clientID)
	for i := 0; ; i++ {
		s.setPhase(next)
		if chain == EventNone {
			break
		}
		if i >= maxCascade {
			m.log.WithFields(logrus.Fields{
				"phase": s.CurrentPhase.String(),
				"event": chain.String(),
			}).Error("housekeeping cascade exceeded bound, stopping")
			break
		}
		entered := phaseTable[s.CurrentPhase]
		eh, ok := entered.handlers[chain]
		if !ok {
			m.log.WithFields(logrus.Fields{
				"phase": s.CurrentPhase.String(),
				"event": chain.String(),
			}).Error("missing entry handler, stopping cascade")
			break
		}
		next, chain = eh(s, chain, clientID)
		if entered.kind != KindHousekeeping {
			// Interactive and terminal entry actions run once; the machine
			// then waits for the next inbound event.
			break
		}
	}
	return true
}

// stepTransition looks up the phase ev leads to from the phase it fired in,
// and the entry event of that next phase.
func stepTransition(s *State, ev Event, branch int) (Phase, Event) {
	next := phaseTable[s.CurrentPhase].transitions[ev][branch]
	return next, phaseTable[next].entry
}

func handleStartGame(s *State, ev Event, clientID string) (Phase, Event) {
	next, entry := stepTransition(s, ev, 0)
	s.StatusMessage = fmt.Sprintf("Team %d: Begin Game!", s.CurrentTeam)
	return next, entry
}

func handleShowNextCard(s *State, ev Event, clientID string) (Phase, Event) {
	s.SetRandomWord()
	return PhaseGuessWord, EventNone
}

func handleCorrectGuess(s *State, ev Event, clientID string) (Phase, Event) {
	next, entry := stepTransition(s, ev, 0)
	// PlayersByTeam indices go stale when a player leaves mid-game; skip the
	// ones that no longer resolve, like ScoreByTeam does.
	for _, idx := range s.PlayersInTeam(s.CurrentTeam) {
		if idx >= len(s.Players) {
			continue
		}
		s.Players[idx].IncrementScore()
	}
	s.StatusMessage = fmt.Sprintf("Correct! Team %d scored a point.", s.CurrentTeam)
	return next, entry
}

func handlePassOrBuzz(s *State, ev Event, clientID string) (Phase, Event) {
	next, entry := stepTransition(s, ev, 0)
	for _, idx := range s.PlayersInTeam(s.CurrentTeam) {
		if idx >= len(s.Players) {
			continue
		}
		s.Players[idx].DecrementScore()
	}
	s.StatusMessage = fmt.Sprintf("Pass/Buzz! Team %d lost 1 point.", s.CurrentTeam)
	return next, entry
}

// handleTimerUp only honors expiry reported by the current player's own
// client. Any other client's countdown is a stale replica racing the
// authoritative turn; those re-enter guess_word untouched.
func handleTimerUp(s *State, ev Event, clientID string) (Phase, Event) {
	if clientID != s.CurrentPlayerID() {
		return PhaseGuessWord, EventNone
	}
	next, entry := stepTransition(s, ev, 0)
	s.StatusMessage = fmt.Sprintf("Round %d: Time is up! Up next: Team %d - click Start Next Round!",
		s.CurrentRound, s.NextTeamIndex())
	return next, entry
}

func handleCheckGameStatus(s *State, ev Event, clientID string) (Phase, Event) {
	if s.CurrentRound >= s.NumRounds {
		return stepTransition(s, ev, 1)
	}
	return stepTransition(s, ev, 0)
}

func handleChangeActiveTeam(s *State, ev Event, clientID string) (Phase, Event) {
	next, entry := stepTransition(s, ev, 0)
	s.AdvanceTeamsAndPlayers()
	s.AdvanceRound()
	return next, entry
}

func handleWaitForNextRound(s *State, ev Event, clientID string) (Phase, Event) {
	// Arming state: a button press (startNextRound) is required to proceed,
	// which prevents the next round from auto-starting.
	return PhaseWaitForNextRound, EventNone
}

func handleStartNextRound(s *State, ev Event, clientID string) (Phase, Event) {
	next, entry := stepTransition(s, ev, 0)
	s.StatusMessage = fmt.Sprintf("Round %d has started!", s.CurrentRound)
	return next, entry
}

func handleFinalScoring(s *State, ev Event, clientID string) (Phase, Event) {
	scores := s.ScoreByTeam()
	currentTeam := s.CurrentTeam
	nextTeam := s.NextTeamIndex()
	s.StatusMessage = fmt.Sprintf("GAME OVER! FINAL SCORES - Team %d score: %d. Team %d score: %d",
		currentTeam, scores[currentTeam], nextTeam, scores[nextTeam])
	return PhaseEndGame, EventNone
}
