package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Seednode/impostor/games/impostor"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *Config {
	return &Config{
		bind:      "127.0.0.1",
		port:      8080,
		rateLimit: 1000,
		rateBurst: 1000,
		log:       zerolog.Nop(),
	}
}

// newTestServer runs the full router with a live hub behind an httptest server.
func newTestServer(t *testing.T, cfg *Config, opts ...impostor.Option) (*httptest.Server, *Hub) {
	t.Helper()

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := newHub(impostor.NewCoordinator(impostor.NewRegistry(opts...)), cfg.log)
	go hub.run(ctx)

	errs := make(chan error, 64)
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: newRouter(cfg, hub, errs)},
	}
	ts.Start()

	t.Cleanup(func() {
		cancel()
		<-hub.done
		ts.Close()
	})

	return ts, hub
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, ts *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	var hello ConnectedMessage
	readData(t, conn, eventConnected, &hello)
	require.NotEmpty(t, hello.ID)

	return conn, hello.ID
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func readMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsMessage {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil skips messages until one of the wanted types arrives.
func readUntil(t *testing.T, conn *websocket.Conn, types ...string) wsMessage {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	seen := []string{}
	for time.Now().Before(deadline) {
		msg := readMessage(t, conn, time.Until(deadline))
		for _, typ := range types {
			if msg.Type == typ {
				return msg
			}
		}
		seen = append(seen, msg.Type)
	}
	t.Fatalf("timed out waiting for %v; seen=%v", types, seen)
	return wsMessage{}
}

func readData(t *testing.T, conn *websocket.Conn, typ string, dest any) {
	t.Helper()

	msg := readUntil(t, conn, typ)
	if dest != nil {
		require.NoError(t, json.Unmarshal(msg.Data, dest))
	}
}

func expectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, payload, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no websocket message within %s, got %s", timeout, payload)
	}
	netErr, ok := err.(net.Error)
	require.True(t, ok && netErr.Timeout(), "expected websocket timeout, got %v", err)
}
