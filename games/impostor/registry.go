package impostor

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// Registry owns every active room, keyed by room code, and remembers which
// room each connection is seated in.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	seats map[string]string

	newCode func() string
	words   Catalog
	rng     Random
	log     zerolog.Logger
}

type Option func(*Registry)

// WithRandom replaces the random source used for words, impostors and turn
// order. Tests use it to script a round.
func WithRandom(rng Random) Option {
	return func(reg *Registry) {
		reg.rng = &lockedRandom{r: rng}
	}
}

func WithCatalog(words Catalog) Option {
	return func(reg *Registry) {
		if len(words) > 0 {
			reg.words = words
		}
	}
}

func WithCodeGenerator(f func() string) Option {
	return func(reg *Registry) {
		reg.newCode = f
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(reg *Registry) {
		reg.log = log
	}
}

func NewRegistry(opts ...Option) *Registry {
	reg := &Registry{
		rooms:   make(map[string]*Room),
		seats:   make(map[string]string),
		newCode: newRoomCode,
		words:   DefaultCatalog(),
		rng:     &lockedRandom{r: NewRandom()},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// CreateRoom seats connID as host of a new room under a fresh code.
func (reg *Registry) CreateRoom(connID, hostName string) (*Room, []Notification, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, seated := reg.seats[connID]; seated {
		return nil, nil, ErrAlreadySeated
	}

	code := ""
	for range codeAttempts {
		candidate := reg.newCode()
		if _, exists := reg.rooms[candidate]; !exists {
			code = candidate
			break
		}
	}
	if code == "" {
		reg.log.Warn().Int("attempts", codeAttempts).Msg("room code space exhausted")
		return nil, nil, ErrNoRoomCodes
	}

	room := newRoom(code, Player{ID: connID, Name: hostName}, reg.words, reg.rng, reg.log)
	reg.rooms[code] = room
	reg.seats[connID] = code

	reg.log.Info().Str("room", code).Str("host", connID).Msg("room created")

	return room, room.created(), nil
}

// JoinRoom appends connID to the room with the given code.
func (reg *Registry) JoinRoom(code, connID, playerName string) (*Room, []Notification, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, seated := reg.seats[connID]; seated {
		return nil, nil, ErrAlreadySeated
	}

	code = NormalizeCode(code)
	room, ok := reg.rooms[code]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	reg.seats[connID] = code

	return room, room.join(Player{ID: connID, Name: playerName}), nil
}

// Departure describes the effect of removing a connection from its room.
type Departure struct {
	Code          string
	Room          *Room
	WasHost       bool
	Aborted       bool
	Notifications []Notification
}

// RemovePlayer unseats connID. Room is nil in the result when the room was
// left empty and has been deleted.
func (reg *Registry) RemovePlayer(connID string) (Departure, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.seats[connID]
	if !ok {
		return Departure{}, false
	}
	delete(reg.seats, connID)

	room, ok := reg.rooms[code]
	if !ok {
		return Departure{}, false
	}

	wasHost, aborted, remaining, notes := room.leave(connID)
	d := Departure{
		Code:          code,
		Room:          room,
		WasHost:       wasHost,
		Aborted:       aborted,
		Notifications: notes,
	}

	if remaining == 0 {
		delete(reg.rooms, code)
		d.Room = nil
		reg.log.Info().Str("room", code).Msg("room closed")
	}

	return d, true
}

func (reg *Registry) Room(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[NormalizeCode(code)]
	return room, ok
}

// SeatOf returns the code of the room connID is seated in.
func (reg *Registry) SeatOf(connID string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code, ok := reg.seats[connID]
	return code, ok
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.rooms)
}

func (reg *Registry) Codes() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	codes := make([]string, 0, len(reg.rooms))
	for code := range reg.rooms {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// lockedRandom lets rooms running on different goroutines share one source.
type lockedRandom struct {
	mu sync.Mutex
	r  Random
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Perm(n int) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Perm(n)
}
