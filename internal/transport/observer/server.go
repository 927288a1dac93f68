package observer

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"colonysim.ai/internal/observerproto"
	"colonysim.ai/internal/sim/world"
)

// Server streams read-only tick snapshots to websocket observers. It never
// feeds anything back into the sim; slow observers get dropped frames, not
// backpressure.
type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	nextID   uint64
	sessions map[string]*session
}

type session struct {
	out        chan []byte
	digestOnly bool
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world:    w,
		log:      logger,
		sessions: map[string]*session{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		cfg := s.world.Config()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.CurrentTick(),
			WorldParams: observerproto.WorldParams{
				TickRateHz: cfg.TickRateHz,
				Width:      cfg.Width,
				Height:     cfg.Height,
				Seed:       cfg.Seed,
			},
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sess := &session{
			out:        make(chan []byte, 64),
			digestOnly: sub.DigestOnly,
		}
		s.mu.Lock()
		s.nextID++
		sid := fmt.Sprintf("O%d", s.nextID)
		s.sessions[sid] = sess
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sid)
			s.mu.Unlock()
		}()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range sess.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		// Reader loop: allow SUBSCRIBE updates.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var sub observerproto.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				continue
			}
			if sub.Type != "SUBSCRIBE" || sub.ProtocolVersion != observerproto.Version {
				continue
			}
			s.mu.Lock()
			sess.digestOnly = sub.DigestOnly
			s.mu.Unlock()
		}

		s.mu.Lock()
		delete(s.sessions, sid)
		close(sess.out)
		s.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// Broadcast fans one tick snapshot out to every session. Called from the sim
// loop after each step; sessions whose buffers are full skip the frame.
func (s *Server) Broadcast(msg observerproto.TickMsg) {
	full, err := json.Marshal(msg)
	if err != nil {
		return
	}
	var digestOnlyRaw []byte

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		b := full
		if sess.digestOnly {
			if digestOnlyRaw == nil {
				slim := msg
				slim.Agents = nil
				slim.Assignments = nil
				digestOnlyRaw, _ = json.Marshal(slim)
			}
			b = digestOnlyRaw
		}
		select {
		case sess.out <- b:
		default:
			// Slow observer; drop the frame.
		}
	}
}

// SessionCount reports active observers.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Snapshot builds the tick message for one completed step. Must run on the
// sim thread, before the next Step mutates anything.
func Snapshot(w *world.World, entry world.TickLogEntry) observerproto.TickMsg {
	msg := observerproto.TickMsg{
		Type:            "TICK",
		ProtocolVersion: observerproto.Version,
		Tick:            entry.Tick,
		Digest:          entry.Digest,
		Counters: map[string]uint64{
			"repaths":              entry.Counters.Repaths,
			"jitter_snaps":         entry.Counters.JitterSnaps,
			"budget_exhausted":     entry.Counters.BudgetExhausted,
			"fallback_assignments": entry.Counters.FallbackAssignments,
			"tasks_completed":      entry.Counters.TasksCompleted,
		},
	}
	for _, a := range w.SortedAgents() {
		st := observerproto.AgentState{
			ID:       a.ID,
			Name:     a.Name,
			Pos:      [2]float64{a.Pos.X, a.Pos.Y},
			HP:       a.Health,
			Rest:     a.Rest,
			Downed:   a.Downed,
			Sleeping: a.Sleeping,
		}
		if t := a.Task; t != nil {
			st.Task = &observerproto.TaskState{
				Kind:     string(t.Kind),
				Category: string(t.Category),
				TargetID: t.Target.ID,
				Target:   [2]int{t.Target.Pos.X, t.Target.Pos.Y},
			}
		}
		msg.Agents = append(msg.Agents, st)
	}
	for _, rec := range entry.Assignments {
		msg.Assignments = append(msg.Assignments, observerproto.AssignmentRecord{
			AgentID:   rec.AgentID,
			Category:  rec.Category,
			Kind:      rec.Kind,
			TargetID:  rec.TargetID,
			Validated: rec.Validated,
		})
	}
	return msg
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
