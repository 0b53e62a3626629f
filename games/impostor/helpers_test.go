package impostor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRandom replays fixed choices so a round can be reproduced exactly.
type scriptedRandom struct {
	ints  []int
	perms [][]int
}

func (s *scriptedRandom) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedRandom) Perm(n int) []int {
	if len(s.perms) == 0 {
		p := make([]int, n)
		for i := range p {
			p[i] = i
		}
		return p
	}
	p := s.perms[0]
	s.perms = s.perms[1:]
	return p
}

func fixedCodes(codes ...string) func() string {
	return func() string {
		if len(codes) == 1 {
			return codes[0]
		}
		c := codes[0]
		codes = codes[1:]
		return c
	}
}

// seatRoom creates room ABCDE hosted by the first connection and joins the rest.
func seatRoom(t *testing.T, rng Random, conns ...string) (*Coordinator, *Room) {
	t.Helper()

	reg := NewRegistry(WithRandom(rng), WithCodeGenerator(fixedCodes("ABCDE")))
	c := NewCoordinator(reg)

	notes := c.Handle(Action{Type: ActionCreateRoom, ConnID: conns[0], PlayerName: upper(conns[0])})
	require.Len(t, notes, 1)
	require.Equal(t, EventRoomCreated, notes[0].Event)

	for _, conn := range conns[1:] {
		notes := c.Handle(Action{Type: ActionJoinRoom, ConnID: conn, RoomCode: "ABCDE", PlayerName: upper(conn)})
		require.Len(t, notes, 1)
		require.Equal(t, EventUpdatePlayerList, notes[0].Event)
	}

	room, ok := reg.Room("ABCDE")
	require.True(t, ok)
	return c, room
}

func upper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func events(notes []Notification) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Event)
	}
	return out
}

func findTo(t *testing.T, notes []Notification, event, conn string) Notification {
	t.Helper()
	for _, n := range notes {
		if n.Event == event && n.Scope == ScopePlayer && n.To == conn {
			return n
		}
	}
	t.Fatalf("no %s notification for %s in %v", event, conn, events(notes))
	return Notification{}
}

func findRoom(t *testing.T, notes []Notification, event string) Notification {
	t.Helper()
	for _, n := range notes {
		if n.Event == event && n.Scope == ScopeRoom {
			return n
		}
	}
	t.Fatalf("no room-wide %s notification in %v", event, events(notes))
	return Notification{}
}

func act(c *Coordinator, typ ActionType, conn string, apply ...func(*Action)) []Notification {
	a := Action{Type: typ, ConnID: conn, RoomCode: "ABCDE"}
	for _, f := range apply {
		f(&a)
	}
	return c.Handle(a)
}

func clue(text string) func(*Action) {
	return func(a *Action) { a.Clue = text }
}

func voteFor(id string) func(*Action) {
	return func(a *Action) { a.VotedForID = id }
}

func guess(text string) func(*Action) {
	return func(a *Action) { a.Guess = text }
}
