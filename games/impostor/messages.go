package impostor

// Payloads carried by notifications. Field names match what clients read.

type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	IsHost bool   `json:"isHost"`
}

type RoomCreatedMessage struct {
	RoomCode string       `json:"roomCode"`
	Players  []PlayerView `json:"players"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

const (
	RoleImpostor = "impostor"
	RoleCrew     = "crew"
)

// GameStartedMessage is private to one player. Word is empty for the impostor
// and Theme is empty for the crew.
type GameStartedMessage struct {
	Role  string `json:"role"`
	Word  string `json:"word,omitempty"`
	Theme string `json:"theme,omitempty"`
}

type NextTurnMessage struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

type ClueView struct {
	PlayerName string `json:"playerName"`
	Clue       string `json:"clue"`
}

type VotingResultMessage struct {
	Votes         map[string]string `json:"votes"`
	Players       []PlayerView      `json:"players"`
	MostVotedName string            `json:"mostVotedPlayerName"`
	IsImpostor    bool              `json:"isImpostor"`
	ImpostorName  string            `json:"impostorName"`
}

type FinalResultMessage struct {
	ImpostorName        string       `json:"impostorName"`
	SecretWord          string       `json:"secretWord"`
	Theme               string       `json:"theme"`
	Clues               []ClueView   `json:"clues"`
	ImpostorGuess       string       `json:"impostorGuess,omitempty"`
	ImpostorWinsByGuess bool         `json:"impostorWinsByGuess"`
	ImpostorWon         bool         `json:"impostorWon"`
	Players             []PlayerView `json:"players"`
}

type GameAbortedMessage struct {
	Message string `json:"message"`
}
