// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parlorgames/tabooo/internal/clock"
	"github.com/parlorgames/tabooo/internal/deck"
	"github.com/parlorgames/tabooo/internal/game"
	"github.com/parlorgames/tabooo/internal/journal"
	"github.com/parlorgames/tabooo/internal/models"
)

// ServerOptions configures a GameServer.
type ServerOptions struct {
	// Teams are the ordered team labels players are striped across.
	Teams []string
	// NumRounds is fixed at game setup.
	NumRounds int
	// BroadcastOnReject re-sends the (unchanged) snapshot even when an event
	// was rejected as invalid for the current phase, matching the historical
	// relay behavior.
	BroadcastOnReject bool
	// RoundFailsafe, when positive, arms a server-side countdown at each
	// round start that ends the round on behalf of the current player. It
	// bounds a round whose current player's client never reports timer
	// expiry (e.g. the player disconnected mid-round). Zero disables it.
	RoundFailsafe time.Duration
	// Journal, when non-nil, receives a record of every dispatched event.
	Journal *journal.Journal
}

// GameServer owns the single authoritative game state for this process and
// serializes every inbound event under one mutex: each event, including its
// full housekeeping cascade, runs to completion before the next is admitted.
// Clients never change state directly; they only propose events.
type GameServer struct {
	mu sync.Mutex

	log     *logrus.Logger
	deck    *deck.Deck
	machine *game.Machine
	opts    ServerOptions

	// roster accumulates players as connections arrive; state references the
	// same roster once a game starts, so joins and leaves are visible to the
	// running game immediately.
	roster *game.Roster
	state  *game.State

	failsafe *clock.Countdown
	seq      int
}

// NewGameServer wires a coordinator over the loaded deck.
func NewGameServer(logger *logrus.Logger, d *deck.Deck, opts ServerOptions) *GameServer {
	if logger == nil {
		logger = logrus.New()
	}
	if len(opts.Teams) == 0 {
		opts.Teams = []string{"A", "B"}
	}
	if opts.NumRounds <= 0 {
		opts.NumRounds = 4
	}
	s := &GameServer{
		log:     logger,
		deck:    d,
		machine: game.NewMachine(logger),
		opts:    opts,
		roster:  game.NewRoster(),
	}
	if opts.RoundFailsafe > 0 {
		s.failsafe = clock.New(opts.RoundFailsafe, s.failsafeExpired)
	}
	return s
}

// State returns the authoritative game state, nil before the first
// start-game.
func (s *GameServer) State() *game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Roster returns the live roster.
func (s *GameServer) Roster() *game.Roster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster
}

// HandleConnect registers a fresh connection as a player keyed by its
// transient connection id. The display name stays empty until the client
// sends update-player-name.
func (s *GameServer) HandleConnect(connID string, c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &models.Player{ID: connID, Connected: true, Conn: c}
	s.roster.AddPlayer(p)
	s.log.Infof("player %s connected (%d in roster)", connID, len(s.roster.Players))

	s.broadcastLocked(map[string]any{"type": "user-connected", "player_id": connID})
	s.broadcastLocked(map[string]any{"type": "player-added", "player": p})
	s.broadcastStateLocked()
}

// HandleAdoptID switches a player from its transient connection id to a
// client-generated stable id. If the stable id already exists in the roster
// this is a reconnect: the old entry keeps its team and score and takes over
// the new socket, and the transient entry is dropped.
func (s *GameServer) HandleAdoptID(connID, stableID string) {
	if stableID == "" || stableID == connID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	transient := s.roster.PlayerByID(connID)
	if transient == nil {
		s.log.Warnf("adopt-id for unknown connection %s", connID)
		return
	}

	if existing := s.roster.PlayerByID(stableID); existing != nil && existing != transient {
		existing.Conn = transient.Conn
		existing.Connected = true
		transient.Conn = nil
		s.roster.RemovePlayerByID(connID)
		s.log.Infof("player %s reconnected (was %s)", stableID, connID)
		s.broadcastLocked(map[string]any{"type": "player-added", "player": existing})
	} else {
		transient.ID = stableID
		s.broadcastLocked(map[string]any{"type": "player-added", "player": transient})
	}
	s.broadcastStateLocked()
}

// HandleStartGame builds a fresh game over the current roster, reassigns
// teams, and kicks the machine out of init. Any game in progress is
// restarted.
func (s *GameServer) HandleStartGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = game.NewState(s.opts.Teams, s.roster, s.deck, s.opts.NumRounds)
	s.state.AssignTeams()
	s.log.Infof("game started: %d players, %d teams, %d rounds",
		len(s.roster.Players), len(s.opts.Teams), s.opts.NumRounds)

	from := s.state.CurrentPhase
	accepted := s.machine.Dispatch(s.state, game.EventStartGame, "")
	s.publishLocked("", game.EventStartGame, from, accepted)
	s.updateFailsafeLocked()
	s.broadcastStateLocked()
}

// HandleClientEvent feeds one proposed event through the machine and fans the
// resulting snapshot out to every connected client.
func (s *GameServer) HandleClientEvent(eventName string, clientPhase int, clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil {
		s.log.Warnf("client event %q from %s before any game was started", eventName, clientID)
		return
	}

	ev, ok := game.ParseEvent(eventName)
	if !ok {
		s.log.Warnf("unknown event %q from %s", eventName, clientID)
		if s.opts.BroadcastOnReject {
			s.broadcastStateLocked()
		}
		return
	}

	if clientPhase != int(s.state.CurrentPhase) {
		// The client's replica lagged behind the authoritative phase. The
		// validity check runs against the server's phase regardless.
		s.log.Debugf("client %s believes phase %d, server is in %s",
			clientID, clientPhase, s.state.CurrentPhase)
	}

	from := s.state.CurrentPhase
	accepted := s.machine.Dispatch(s.state, ev, clientID)
	s.publishLocked(clientID, ev, from, accepted)
	s.updateFailsafeLocked()

	if accepted || s.opts.BroadcastOnReject {
		s.broadcastStateLocked()
	}
}

// HandleUpdatePlayerName late-binds a player's display name.
func (s *GameServer) HandleUpdatePlayerName(playerID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.roster.PlayerByID(playerID)
	if p == nil {
		s.log.Warnf("name update for unknown player %s", playerID)
		return
	}
	p.Name = name
	s.broadcastLocked(map[string]any{"type": "player-added", "player": p})
	s.broadcastStateLocked()
}

// HandlePause relays a pause to every client. The machine is untouched:
// pausing only affects the clients' local countdown display (and the
// failsafe, which must not fire during a pause).
func (s *GameServer) HandlePause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failsafe != nil {
		s.failsafe.Pause()
	}
	s.broadcastLocked(map[string]any{"type": "pause-game-update"})
}

// HandleResume relays a resume to every client.
func (s *GameServer) HandleResume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failsafe != nil {
		s.failsafe.Resume()
	}
	s.broadcastLocked(map[string]any{"type": "resume-game-update"})
}

// HandleDisconnect tears down a player's connection. Transient players
// (never adopted a stable id) are removed from the roster outright; stable
// players stay enrolled, disconnected, so a reconnect keeps their team and
// score. Turn pointers are deliberately not revalidated.
func (s *GameServer) HandleDisconnect(playerID string, transient bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.roster.PlayerByID(playerID)
	if p == nil {
		return
	}
	if transient {
		s.roster.RemovePlayerByID(playerID)
		s.log.Infof("player %s removed (%d in roster)", playerID, len(s.roster.Players))
	} else {
		p.Connected = false
		p.Conn = nil
		s.log.Infof("player %s disconnected, entry kept for reconnect", playerID)
	}
	s.broadcastLocked(map[string]any{"type": "user-disconnected", "player_id": playerID})
	s.broadcastStateLocked()
}

// failsafeExpired ends the round on behalf of the current player when their
// own client never reported expiry.
func (s *GameServer) failsafeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == nil || s.state.CurrentPhase != game.PhaseGuessWord {
		return
	}
	clientID := s.state.CurrentPlayerID()
	s.log.Infof("round failsafe expired, ending round for %s", clientID)

	from := s.state.CurrentPhase
	accepted := s.machine.Dispatch(s.state, game.EventTimerUp, clientID)
	s.publishLocked(clientID, game.EventTimerUp, from, accepted)
	s.updateFailsafeLocked()
	s.broadcastStateLocked()
}

// updateFailsafeLocked re-arms the failsafe at each round start and disarms
// it whenever the game is not in the guessing phase. Guesses within a round
// re-enter guess_word and must not reset the countdown.
func (s *GameServer) updateFailsafeLocked() {
	if s.failsafe == nil {
		return
	}
	if s.state == nil || s.state.CurrentPhase != game.PhaseGuessWord {
		s.failsafe.Stop()
		return
	}
	if s.state.PreviousPhase != game.PhaseGuessWord {
		s.failsafe.Start()
	}
}

// publishLocked records one dispatch in the transition journal, when one is
// configured. Publishing happens off the event path so a slow Redis never
// holds up the game.
func (s *GameServer) publishLocked(clientID string, ev game.Event, from game.Phase, accepted bool) {
	if s.opts.Journal == nil {
		return
	}
	s.seq++
	rec := journal.TransitionRecord{
		RecordID:  uuid.New(),
		Seq:       s.seq,
		ClientID:  clientID,
		Event:     ev.String(),
		FromPhase: from.String(),
		ToPhase:   s.state.CurrentPhase.String(),
		Accepted:  accepted,
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.opts.Journal.Publish(ctx, rec); err != nil {
			s.log.Warnf("journal publish failed: %v", err)
		}
	}()
}

// broadcastStateLocked replaces every client's replica with the full
// authoritative snapshot. Per-field diffing is deliberately absent; the
// wholesale replacement is what keeps replicas consistent.
func (s *GameServer) broadcastStateLocked() {
	if s.state == nil {
		return
	}
	s.broadcastLocked(map[string]any{"type": "state-replaced", "state": s.state})
}

// broadcastLocked marshals msg under the lock (so the snapshot cannot race
// the next event) and writes it to every live connection asynchronously.
func (s *GameServer) broadcastLocked(msg any) {
	var conns []*websocket.Conn
	for _, p := range s.roster.Players {
		if p.Connected && p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Errorf("failed to marshal broadcast message: %v", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	go func(conns []*websocket.Conn, data []byte) {
		for _, c := range conns {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := c.Write(ctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.log.Warnf("failed to write broadcast message: %v", err)
			}
		}
	}(conns, data)
}
