package impostor

import "github.com/rs/zerolog"

type ActionType string

const (
	ActionCreateRoom    ActionType = "createRoom"
	ActionJoinRoom      ActionType = "joinRoom"
	ActionStartGame     ActionType = "startGame"
	ActionSubmitClue    ActionType = "submitClue"
	ActionSubmitVote    ActionType = "submitVote"
	ActionImpostorGuess ActionType = "impostorGuess"
	ActionPlayAgain     ActionType = "playAgain"
)

// Action is one inbound player request. ConnID is always set by the gateway;
// the remaining fields depend on Type.
type Action struct {
	Type       ActionType
	ConnID     string
	RoomCode   string
	PlayerName string
	Clue       string
	VotedForID string
	Guess      string
}

// Coordinator turns player actions into room transitions.
type Coordinator struct {
	rooms *Registry
	log   zerolog.Logger
}

func NewCoordinator(rooms *Registry) *Coordinator {
	return &Coordinator{
		rooms: rooms,
		log:   rooms.log,
	}
}

func (c *Coordinator) Registry() *Registry {
	return c.rooms
}

// Handle applies a and returns the notifications to deliver. Illegal actions
// are dropped without a reply; lookup failures are reported to the sender.
func (c *Coordinator) Handle(a Action) []Notification {
	notes, err := c.apply(a)
	switch {
	case err == nil:
		return notes
	case IsIllegalAction(err):
		c.log.Debug().
			Err(err).
			Str("action", string(a.Type)).
			Str("conn", a.ConnID).
			Str("room", a.RoomCode).
			Msg("action ignored")
		return nil
	default:
		c.log.Debug().Err(err).Str("action", string(a.Type)).Str("conn", a.ConnID).Msg("action rejected")
		return []Notification{errorTo(a.ConnID, err)}
	}
}

func (c *Coordinator) apply(a Action) ([]Notification, error) {
	switch a.Type {
	case ActionCreateRoom:
		_, notes, err := c.rooms.CreateRoom(a.ConnID, a.PlayerName)
		return notes, err
	case ActionJoinRoom:
		_, notes, err := c.rooms.JoinRoom(a.RoomCode, a.ConnID, a.PlayerName)
		return notes, err
	}

	room, err := c.roomFor(a)
	if err != nil {
		return nil, err
	}

	switch a.Type {
	case ActionStartGame:
		return room.StartRound(a.ConnID)
	case ActionSubmitClue:
		return room.SubmitClue(a.ConnID, a.Clue)
	case ActionSubmitVote:
		return room.SubmitVote(a.ConnID, a.VotedForID)
	case ActionImpostorGuess:
		return room.SubmitImpostorGuess(a.ConnID, a.Guess)
	case ActionPlayAgain:
		return room.PlayAgain(a.ConnID)
	default:
		return nil, ErrUnknownAction
	}
}

// roomFor resolves the room an in-room action targets. The sender must be
// seated in that room.
func (c *Coordinator) roomFor(a Action) (*Room, error) {
	room, ok := c.rooms.Room(a.RoomCode)
	if !ok {
		return nil, ErrNotSeated
	}
	if code, seated := c.rooms.SeatOf(a.ConnID); !seated || code != room.Code() {
		return nil, ErrNotSeated
	}
	return room, nil
}

// Disconnect removes connID from its room, aborting any round in progress.
func (c *Coordinator) Disconnect(connID string) []Notification {
	d, ok := c.rooms.RemovePlayer(connID)
	if !ok {
		return nil
	}

	c.log.Debug().
		Str("conn", connID).
		Str("room", d.Code).
		Bool("was_host", d.WasHost).
		Bool("aborted", d.Aborted).
		Msg("player left")

	return d.Notifications
}
