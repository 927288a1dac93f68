package observer

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"colonysim.ai/internal/observerproto"
	"colonysim.ai/internal/sim/nav"
	"colonysim.ai/internal/sim/world"
)

func newTestServer(t *testing.T) (*Server, *world.World, *httptest.Server) {
	t.Helper()
	w := world.New(world.WorldConfig{Width: 16, Height: 16, Seed: 1})
	w.SpawnAgent("scout", nav.Vec2i{X: 2, Y: 2})
	w.Step()

	srv := NewServer(w, log.New(os.Stderr, "observer: ", log.LstdFlags))
	hs := httptest.NewServer(srv.WSHandler())
	t.Cleanup(hs.Close)
	return srv, w, hs
}

func dial(t *testing.T, hs *httptest.Server, sub observerproto.SubscribeMsg) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.WriteJSON(sub); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return conn
}

func TestObserverReceivesTicks(t *testing.T) {
	srv, w, hs := newTestServer(t)
	conn := dial(t, hs, observerproto.SubscribeMsg{
		Type:            "SUBSCRIBE",
		ProtocolVersion: observerproto.Version,
	})

	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	entry := w.Step()
	srv.Broadcast(Snapshot(w, entry))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg observerproto.TickMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != "TICK" || msg.Tick != entry.Tick || msg.Digest != entry.Digest {
		t.Fatalf("tick message wrong: %+v", msg)
	}
	if len(msg.Agents) != 1 || msg.Agents[0].Name != "scout" {
		t.Fatalf("agent state missing: %+v", msg.Agents)
	}
}

func TestObserverDigestOnly(t *testing.T) {
	srv, w, hs := newTestServer(t)
	conn := dial(t, hs, observerproto.SubscribeMsg{
		Type:            "SUBSCRIBE",
		ProtocolVersion: observerproto.Version,
		DigestOnly:      true,
	})

	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	entry := w.Step()
	srv.Broadcast(Snapshot(w, entry))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg observerproto.TickMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Digest == "" {
		t.Fatal("digest missing")
	}
	if len(msg.Agents) != 0 {
		t.Fatalf("digest-only stream must omit agents, got %d", len(msg.Agents))
	}
}

func TestObserverRejectsBadHandshake(t *testing.T) {
	_, _, hs := newTestServer(t)
	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "NOPE"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("server should close the connection on a bad handshake")
	}
}

func TestBootstrapHandler(t *testing.T) {
	srv, w, _ := newTestServer(t)
	hs := httptest.NewServer(srv.BootstrapHandler())
	defer hs.Close()

	resp, err := hs.Client().Get(hs.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var boot observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&boot); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if boot.WorldID != w.Config().ID || boot.WorldParams.Width != 16 {
		t.Fatalf("bootstrap wrong: %+v", boot)
	}
}
