package impostor

import (
	"maps"
	"strings"
)

const (
	impostorWinPoints = 2
	crewWinPoints     = 1
)

// SubmitVote records voterID's vote. A repeated vote replaces the earlier one.
// Once every seated player has voted, the round resolves.
func (r *Room) SubmitVote(voterID, votedForID string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseVoting {
		return nil, ErrWrongPhase
	}
	if r.indexLocked(voterID) < 0 {
		return nil, ErrNotSeated
	}
	if r.round.Resolved {
		return nil, ErrVotingClosed
	}

	r.touchLocked()
	r.round.Votes[voterID] = votedForID

	if len(r.round.Votes) < len(r.players) {
		return nil, nil
	}

	return r.resolveVotingLocked(), nil
}

// mostVotedLocked returns the seated player with the highest tally. Ties go to
// whoever joined the room first; votes for unknown ids count toward nobody.
func (r *Room) mostVotedLocked() (Player, bool) {
	counts := make(map[string]int, len(r.round.Votes))
	for _, target := range r.round.Votes {
		counts[target]++
	}

	var (
		best  Player
		found bool
		top   int
	)
	for _, p := range r.players {
		if n := counts[p.ID]; n > top {
			best, found, top = p, true, n
		}
	}

	return best, found
}

func (r *Room) resolveVotingLocked() []Notification {
	r.round.Resolved = true

	impostor, _ := r.playerLocked(r.round.ImpostorID)
	voted, found := r.mostVotedLocked()
	caught := found && voted.ID == impostor.ID

	r.log.Info().
		Str("most_voted", voted.ID).
		Bool("impostor_caught", caught).
		Msg("voting resolved")

	notes := []Notification{
		r.broadcastLocked(EventVotingResult, VotingResultMessage{
			Votes:         maps.Clone(r.round.Votes),
			Players:       r.playerViewsLocked(),
			MostVotedName: voted.Name,
			IsImpostor:    caught,
			ImpostorName:  impostor.Name,
		}),
	}

	if !caught {
		return append(notes, r.finishLocked(true, "", false))
	}

	r.round.AwaitingGuess = true
	return append(notes, toPlayer(r.code, impostor.ID, EventImpostorGuessChance, nil))
}

// SubmitImpostorGuess settles the round once a caught impostor names a word.
func (r *Room) SubmitImpostorGuess(connID, guess string) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.round == nil || !r.round.AwaitingGuess || connID != r.round.ImpostorID {
		return nil, ErrNoGuessPending
	}

	r.touchLocked()
	r.round.AwaitingGuess = false

	correct := guessMatches(guess, r.round.Word.Secret)

	return []Notification{r.finishLocked(correct, guess, correct)}, nil
}

func guessMatches(guess, secret string) bool {
	return strings.EqualFold(strings.TrimSpace(guess), strings.TrimSpace(secret))
}

// finishLocked awards points, ends the round and builds the final result.
func (r *Room) finishLocked(impostorWon bool, guess string, byGuess bool) Notification {
	impostorID := r.round.ImpostorID

	for i := range r.players {
		switch {
		case impostorWon && r.players[i].ID == impostorID:
			r.players[i].Score += impostorWinPoints
		case !impostorWon && r.players[i].ID != impostorID:
			r.players[i].Score += crewWinPoints
		}
	}

	r.phase = PhaseEnded
	r.log.Info().Bool("impostor_won", impostorWon).Msg("round ended")

	return r.broadcastLocked(EventFinalResult, FinalResultMessage{
		ImpostorName:        r.nameLocked(impostorID),
		SecretWord:          r.round.Word.Secret,
		Theme:               r.round.Word.Theme,
		Clues:               r.clueViewsLocked(),
		ImpostorGuess:       guess,
		ImpostorWinsByGuess: byGuess,
		ImpostorWon:         impostorWon,
		Players:             r.playerViewsLocked(),
	})
}
