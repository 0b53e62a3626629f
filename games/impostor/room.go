package impostor

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MinPlayers is the smallest room that can start a round.
const MinPlayers = 3

type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseGivingClues Phase = "giving_clues"
	PhaseVoting      Phase = "voting"
	PhaseEnded       Phase = "ended"
)

type Player struct {
	ID    string
	Name  string
	Score int
}

// Room is one game session. Every exported method locks the room for the
// whole transition, so two actions on the same room never interleave.
type Room struct {
	mu sync.Mutex

	code    string
	hostID  string
	players []Player
	phase   Phase
	round   *Round

	createdAt  time.Time
	lastActive time.Time

	words Catalog
	rng   Random
	log   zerolog.Logger
}

// RoomState is a detached copy of a room, safe to read without the lock.
type RoomState struct {
	Code       string
	HostID     string
	Players    []Player
	Phase      Phase
	Round      *Round
	CreatedAt  time.Time
	LastActive time.Time
}

func newRoom(code string, host Player, words Catalog, rng Random, log zerolog.Logger) *Room {
	now := time.Now()
	return &Room{
		code:       code,
		hostID:     host.ID,
		players:    []Player{host},
		phase:      PhaseWaiting,
		createdAt:  now,
		lastActive: now,
		words:      words,
		rng:        rng,
		log:        log.With().Str("room", code).Logger(),
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) Snapshot() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomState{
		Code:       r.code,
		HostID:     r.hostID,
		Players:    slices.Clone(r.players),
		Phase:      r.phase,
		Round:      r.round.clone(),
		CreatedAt:  r.createdAt,
		LastActive: r.lastActive,
	}
}

func (r *Room) touchLocked() {
	r.lastActive = time.Now()
}

func (r *Room) indexLocked(connID string) int {
	for i, p := range r.players {
		if p.ID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) playerLocked(connID string) (Player, bool) {
	if i := r.indexLocked(connID); i >= 0 {
		return r.players[i], true
	}
	return Player{}, false
}

func (r *Room) nameLocked(connID string) string {
	p, _ := r.playerLocked(connID)
	return p.Name
}

func (r *Room) playerViewsLocked() []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		views = append(views, PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Score:  p.Score,
			IsHost: p.ID == r.hostID,
		})
	}
	return views
}

func (r *Room) broadcastLocked(event string, payload any) Notification {
	members := make([]string, 0, len(r.players))
	for _, p := range r.players {
		members = append(members, p.ID)
	}

	return Notification{
		Scope:   ScopeRoom,
		Room:    r.code,
		Event:   event,
		Payload: payload,
		members: members,
	}
}

// created is called once by the registry right after the room exists.
func (r *Room) created() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return []Notification{
		toPlayer(r.code, r.hostID, EventRoomCreated, RoomCreatedMessage{
			RoomCode: r.code,
			Players:  r.playerViewsLocked(),
		}),
	}
}

func (r *Room) join(p Player) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.touchLocked()
	r.players = append(r.players, p)
	r.log.Debug().Str("player", p.ID).Str("name", p.Name).Msg("player joined")

	return []Notification{
		r.broadcastLocked(EventUpdatePlayerList, r.playerViewsLocked()),
	}
}

// leave removes connID from the room. A departure during an active round
// aborts it without resolution.
func (r *Room) leave(connID string) (wasHost bool, aborted bool, remaining int, notes []Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(connID)
	if i < 0 {
		return false, false, len(r.players), nil
	}

	r.touchLocked()
	r.players = slices.Delete(r.players, i, i+1)
	wasHost = r.hostID == connID

	if len(r.players) == 0 {
		r.hostID = ""
		r.round = nil
		return wasHost, false, 0, nil
	}

	if wasHost {
		r.hostID = r.players[0].ID
		r.log.Debug().Str("host", r.hostID).Msg("host re-elected")
	}

	if r.phase != PhaseWaiting {
		aborted = true
		r.round = nil
		r.phase = PhaseWaiting
		r.log.Info().Str("player", connID).Msg("round aborted")
		notes = append(notes, r.broadcastLocked(EventGameAborted, GameAbortedMessage{
			Message: "The game was ended because a player left.",
		}))
	}

	notes = append(notes, r.broadcastLocked(EventUpdatePlayerList, r.playerViewsLocked()))

	return wasHost, aborted, len(r.players), notes
}

// PlayAgain returns everyone to the lobby, keeping players and scores.
func (r *Room) PlayAgain(requester string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requester != r.hostID {
		return nil, ErrNotHost
	}
	if r.phase == PhaseGivingClues || r.phase == PhaseVoting {
		return nil, ErrWrongPhase
	}

	r.touchLocked()
	r.round = nil
	r.phase = PhaseWaiting

	return []Notification{
		r.broadcastLocked(EventResetToLobby, r.playerViewsLocked()),
	}, nil
}
