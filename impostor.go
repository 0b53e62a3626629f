// Impostor: a word party game.
//
// Every player but one is told a secret word; the impostor only learns its
// theme. Players give one clue each in a shuffled order, then everyone votes
// on who the impostor is. A wrongly accused crew member hands the impostor the
// win; a caught impostor gets one guess at the word to steal it back.
//
// Features:
// - One WebSocket per player at $prefix/ws; rooms are chosen by message
// - Room codes are 5 uppercase letters or digits, collision-checked on creation
// - Roles are sent privately; the impostor never receives the word
// - Host-only start and replay; the earliest joiner inherits host on leave
// - Any departure during a round aborts it and returns the room to the lobby
// - Per-connection rate limiting and ping/pong liveness checks
// - PNG QR code for sharing a room's join link, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"golang.org/x/time/rate"
)

const (
	maxMessageSize = 4096
	sendBuffer     = 32
	writeWait      = 10 * time.Second
	eventConnected = "connected"
)

// Messages coming from clients
type ClientMessage struct {
	Type       string `json:"type"`
	RoomCode   string `json:"roomCode,omitempty" validate:"required,len=5,alphanum"`
	PlayerName string `json:"playerName,omitempty" validate:"required,max=20"`
	Clue       string `json:"clue,omitempty" validate:"required,max=60"`
	VotedForID string `json:"votedForId,omitempty" validate:"required,max=64"`
	Guess      string `json:"guess,omitempty" validate:"required,max=60"`
}

// Messages sent to clients
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ConnectedMessage tells a client the id other players will know it by.
type ConnectedMessage struct {
	ID string `json:"id"`
}

type RoomSummary struct {
	RoomCode   string    `json:"roomCode"`
	Phase      string    `json:"phase"`
	Players    int       `json:"players"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}

// requiredFields lists the payload fields each action must carry.
var requiredFields = map[impostor.ActionType][]string{
	impostor.ActionCreateRoom:    {"PlayerName"},
	impostor.ActionJoinRoom:      {"RoomCode", "PlayerName"},
	impostor.ActionStartGame:     {"RoomCode"},
	impostor.ActionSubmitClue:    {"RoomCode", "Clue"},
	impostor.ActionSubmitVote:    {"RoomCode", "VotedForID"},
	impostor.ActionImpostorGuess: {"RoomCode", "Guess"},
	impostor.ActionPlayAgain:     {"RoomCode"},
}

var fieldMessages = map[string]string{
	"roomCode":   "Room codes are 5 letters or digits.",
	"playerName": "Please enter a name of up to 20 characters.",
	"clue":       "Clues must be between 1 and 60 characters.",
	"votedForId": "Please choose a player to vote for.",
	"guess":      "Guesses must be between 1 and 60 characters.",
}

var errUnknownMessage = errors.New("unknown message type")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

var validate = newValidator()

// action validates m and converts it into a core action on behalf of connID.
func (m ClientMessage) action(connID string) (impostor.Action, error) {
	typ := impostor.ActionType(m.Type)

	fields, ok := requiredFields[typ]
	if !ok {
		return impostor.Action{}, errUnknownMessage
	}

	m.RoomCode = impostor.NormalizeCode(m.RoomCode)
	m.PlayerName = strings.TrimSpace(m.PlayerName)
	m.Clue = strings.TrimSpace(m.Clue)
	m.Guess = strings.TrimSpace(m.Guess)

	if err := validate.StructPartial(m, fields...); err != nil {
		return impostor.Action{}, validationMessage(err)
	}

	return impostor.Action{
		Type:       typ,
		ConnID:     connID,
		RoomCode:   m.RoomCode,
		PlayerName: m.PlayerName,
		Clue:       m.Clue,
		VotedForID: m.VotedForID,
		Guess:      m.Guess,
	}, nil
}

func validationMessage(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if msg, ok := fieldMessages[verr.Field()]; ok {
				return errors.New(msg)
			}
		}
	}
	return errors.New("invalid request")
}

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan ServerMessage
	limiter *rate.Limiter
}

type inboundMessage struct {
	client *Client
	msg    ClientMessage
}

// Hub owns every live connection and feeds their actions to the game one at
// a time.
type Hub struct {
	clients map[string]*Client

	register chan *Client
	unreg    chan *Client
	inbound  chan inboundMessage
	done     chan struct{}

	game *impostor.Coordinator
	log  zerolog.Logger
}

func newHub(game *impostor.Coordinator, log zerolog.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		inbound:  make(chan inboundMessage),
		done:     make(chan struct{}),
		game:     game,
		log:      log,
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.clients[c.id] = c
			h.log.Debug().Str("conn", c.id).Msg("GAMES: Client connected")
			h.send(c.id, ServerMessage{
				Type: eventConnected,
				Data: ConnectedMessage{ID: c.id},
			})

		case c := <-h.unreg:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.log.Debug().Str("conn", c.id).Msg("GAMES: Client disconnected")
			h.deliver(h.game.Disconnect(c.id))

		case in := <-h.inbound:
			action, err := in.msg.action(in.client.id)
			if err != nil {
				h.send(in.client.id, ServerMessage{
					Type: impostor.EventError,
					Data: impostor.ErrorMessage{Message: err.Error()},
				})
				continue
			}
			h.deliver(h.game.Handle(action))
		}
	}
}

// deliver fans each notification out to its recipients.
func (h *Hub) deliver(notes []impostor.Notification) {
	for _, n := range notes {
		msg := ServerMessage{Type: n.Event, Data: n.Payload}
		for _, id := range n.Recipients() {
			h.send(id, msg)
		}
	}
}

// send never blocks the hub; a client that cannot keep up is dropped and
// will be treated as disconnected once its read pump notices.
func (h *Hub) send(id string, msg ServerMessage) {
	c, ok := h.clients[id]
	if !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.log.Warn().Str("conn", id).Msg("GAMES: Dropping slow client")
		delete(h.clients, id)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

// enqueue hands work to the hub unless it has already stopped.
func enqueue[T any](h *Hub, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWebsocket(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.log.Debug().Err(err).Str("remote", realIP(r)).Msg("GAMES: Upgrade failed")
			return
		}

		client := &Client{
			id:      uuid.NewString(),
			conn:    conn,
			send:    make(chan ServerMessage, sendBuffer),
			limiter: rate.NewLimiter(rate.Limit(cfg.rateLimit), cfg.rateBurst),
		}

		if !enqueue(hub, hub.register, client) {
			_ = conn.Close()
			return
		}

		cfg.log.Info().Str("conn", client.id).Str("remote", realIP(r)).Msg("GAMES: Player connected")

		go client.writePump(cfg)
		client.readPump(cfg, hub)
	}
}

func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		enqueue(h, h.unreg, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if cfg.playerTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(cfg.playerTimeout))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(cfg.playerTimeout))
		})
	}

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if !malformed(err) {
				return
			}
			// Answered with an error by the hub, like any unknown type.
			msg = ClientMessage{}
		}

		if cfg.playerTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(cfg.playerTimeout))
		}

		if !c.limiter.Allow() {
			cfg.log.Debug().Str("conn", c.id).Str("type", msg.Type).Msg("GAMES: Rate limited")
			continue
		}

		if !enqueue(h, h.inbound, inboundMessage{client: c, msg: msg}) {
			return
		}
	}
}

// malformed reports whether a read failed on the payload rather than on the
// connection itself. ReadJSON reports truncated and empty frames as
// io.ErrUnexpectedEOF; broken connections surface as close or net errors.
func malformed(err error) bool {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func (c *Client) writePump(cfg *Config) {
	var ping <-chan time.Time
	if cfg.playerTimeout > 0 {
		ticker := time.NewTicker(cfg.playerTimeout * 9 / 10)
		defer ticker.Stop()
		ping = ticker.C
	}

	defer c.conn.Close()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ping:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// joinURL is the address a QR code for code points at.
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := cfg.scheme()
	if r.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}

	return scheme + "://" + r.Host + cfg.prefix + "/?room=" + code
}

// QR handler: generates a PNG QR code for a room's join link using go-qrcode.
func serveRoomQR(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := hub.game.Registry().Room(ps.ByName("code"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		const qrSize = 320
		png, err := qrcode.Encode(joinURL(cfg, r, room.Code()), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func serveRoomSummary(cfg *Config, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, ok := hub.game.Registry().Room(ps.ByName("code"))
		if !ok {
			writeJSON(cfg, w, http.StatusNotFound, map[string]string{"error": impostor.ErrRoomNotFound.Error()})
			return
		}

		state := room.Snapshot()
		writeJSON(cfg, w, http.StatusOK, RoomSummary{
			RoomCode:   state.Code,
			Phase:      string(state.Phase),
			Players:    len(state.Players),
			CreatedAt:  state.CreatedAt,
			LastActive: state.LastActive,
		})
	}
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	securityHeaders(cfg, w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// registerImpostorGame sets up routes so that:
//   - $prefix/ws           → WebSocket for one player
//   - $prefix/qr/:code     → PNG QR code for a room's join link
//   - $prefix/rooms/:code  → JSON summary of a room
func registerImpostorGame(cfg *Config, hub *Hub, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/ws", serveWebsocket(cfg, hub))

	mux.GET(cfg.prefix+"/qr/:code", serveRoomQR(cfg, hub))

	mux.GET(cfg.prefix+"/rooms/:code", serveRoomSummary(cfg, hub))
}
