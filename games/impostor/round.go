package impostor

import (
	"maps"
	"slices"
)

type Clue struct {
	PlayerID string
	Text     string
}

// Round is the state of one play-through. A room holds either a whole Round
// or none at all.
type Round struct {
	Word       Word
	ImpostorID string
	TurnOrder  []string
	TurnIndex  int
	Clues      []Clue
	Votes      map[string]string

	// AwaitingGuess is set once the impostor has been voted out and may still
	// win by naming the secret word.
	AwaitingGuess bool
	Resolved      bool
}

func (rd *Round) clone() *Round {
	if rd == nil {
		return nil
	}

	out := *rd
	out.TurnOrder = slices.Clone(rd.TurnOrder)
	out.Clues = slices.Clone(rd.Clues)
	out.Votes = maps.Clone(rd.Votes)
	return &out
}

func (rd *Round) currentTurn() string {
	if rd.TurnIndex >= len(rd.TurnOrder) {
		return ""
	}
	return rd.TurnOrder[rd.TurnIndex]
}

// StartRound picks the word, the impostor and the turn order, then tells
// each player their role privately.
func (r *Room) StartRound(requester string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if requester != r.hostID {
		return nil, ErrNotHost
	}
	if r.phase != PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if len(r.players) < MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	word := r.words.Pick(r.rng.IntN(r.words.Len()))
	impostor := r.players[r.rng.IntN(len(r.players))].ID

	order := make([]string, len(r.players))
	for i, j := range r.rng.Perm(len(r.players)) {
		order[i] = r.players[j].ID
	}

	r.touchLocked()
	r.round = &Round{
		Word:       word,
		ImpostorID: impostor,
		TurnOrder:  order,
		Votes:      make(map[string]string),
	}
	r.phase = PhaseGivingClues

	r.log.Info().
		Str("impostor", impostor).
		Strs("turn_order", order).
		Msg("round started")

	notes := make([]Notification, 0, len(r.players)+1)
	for _, p := range r.players {
		msg := GameStartedMessage{Role: RoleCrew, Word: word.Secret}
		if p.ID == impostor {
			msg = GameStartedMessage{Role: RoleImpostor, Theme: word.Theme}
		}
		notes = append(notes, toPlayer(r.code, p.ID, EventGameStarted, msg))
	}
	notes = append(notes, r.nextTurnLocked())

	return notes, nil
}

func (r *Room) nextTurnLocked() Notification {
	id := r.round.currentTurn()
	return r.broadcastLocked(EventNextTurn, NextTurnMessage{
		PlayerName: r.nameLocked(id),
		PlayerID:   id,
	})
}

// SubmitClue records a clue from the player whose turn it is.
func (r *Room) SubmitClue(connID, text string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseGivingClues {
		return nil, ErrWrongPhase
	}
	if connID != r.round.currentTurn() {
		return nil, ErrNotYourTurn
	}

	r.touchLocked()
	r.round.Clues = append(r.round.Clues, Clue{PlayerID: connID, Text: text})
	r.round.TurnIndex++

	notes := []Notification{
		r.broadcastLocked(EventNewClue, ClueView{
			PlayerName: r.nameLocked(connID),
			Clue:       text,
		}),
	}

	if r.round.TurnIndex < len(r.round.TurnOrder) {
		return append(notes, r.nextTurnLocked()), nil
	}

	r.phase = PhaseVoting
	r.log.Debug().Msg("voting started")

	return append(notes, r.broadcastLocked(EventStartVoting, r.playerViewsLocked())), nil
}

func (r *Room) clueViewsLocked() []ClueView {
	views := make([]ClueView, 0, len(r.round.Clues))
	for _, c := range r.round.Clues {
		views = append(views, ClueView{
			PlayerName: r.nameLocked(c.PlayerID),
			Clue:       c.Text,
		})
	}
	return views
}
