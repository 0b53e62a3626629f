package impostor

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadySeated = errors.New("already seated in a room")
	ErrNoRoomCodes   = errors.New("unable to allocate a room code")

	// ErrIllegalAction wraps every action that arrived in the wrong phase or from
	// the wrong player. Such actions change nothing and broadcast nothing.
	ErrIllegalAction = errors.New("illegal action")

	ErrNotHost          = illegal("only the host may do that")
	ErrNotEnoughPlayers = illegal(fmt.Sprintf("at least %d players are required", MinPlayers))
	ErrWrongPhase       = illegal("not allowed in the current phase")
	ErrNotYourTurn      = illegal("not your turn")
	ErrNotSeated        = illegal("not seated in this room")
	ErrNoGuessPending   = illegal("no guess is pending")
	ErrVotingClosed     = illegal("voting has already been resolved")
	ErrUnknownAction    = illegal("unknown action")
)

func illegal(msg string) error {
	return fmt.Errorf("%w: %s", ErrIllegalAction, msg)
}

// IsIllegalAction reports whether err was caused by an out-of-phase or
// out-of-turn action.
func IsIllegalAction(err error) bool {
	return errors.Is(err, ErrIllegalAction)
}
