package impostor

// Scope says who a Notification is for.
type Scope int

const (
	// ScopeRoom addresses every player seated in the room when the
	// notification was produced.
	ScopeRoom Scope = iota
	// ScopePlayer addresses a single connection.
	ScopePlayer
)

func (s Scope) String() string {
	switch s {
	case ScopeRoom:
		return "room"
	case ScopePlayer:
		return "player"
	default:
		return "unknown"
	}
}

// Outbound event names, as seen by clients.
const (
	EventRoomCreated         = "roomCreated"
	EventUpdatePlayerList    = "updatePlayerList"
	EventError               = "error"
	EventGameStarted         = "gameStarted"
	EventNextTurn            = "nextTurn"
	EventNewClue             = "newClue"
	EventStartVoting         = "startVoting"
	EventVotingResult        = "votingResult"
	EventImpostorGuessChance = "impostorGuessChance"
	EventFinalResult         = "finalResult"
	EventResetToLobby        = "resetToLobby"
	EventGameAborted         = "gameAborted"
)

// Notification is an outbound event produced by a room transition. It never
// references a connection object, so the core can run without a transport.
type Notification struct {
	Scope   Scope
	Room    string
	To      string
	Event   string
	Payload any

	members []string
}

// Recipients returns the connection ids the notification must be delivered to.
func (n Notification) Recipients() []string {
	if n.Scope == ScopePlayer {
		return []string{n.To}
	}

	out := make([]string, len(n.members))
	copy(out, n.members)
	return out
}

func toPlayer(code, connID, event string, payload any) Notification {
	return Notification{
		Scope:   ScopePlayer,
		Room:    code,
		To:      connID,
		Event:   event,
		Payload: payload,
	}
}

func errorTo(connID string, err error) Notification {
	return toPlayer("", connID, EventError, ErrorMessage{Message: err.Error()})
}
