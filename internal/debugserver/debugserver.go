// Package debugserver is an optional local inspector: a websocket
// endpoint that streams CPU register snapshots and framebuffer hashes
// to a browser client. It is never required for core operation; the
// host decides whether to start it.
package debugserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/gorilla/websocket"

	"gbcore/internal/gameboy"
	"gbcore/pkg/log"
)

// Snapshot is one published machine observation.
type Snapshot struct {
	AF        uint16 `json:"af"`
	BC        uint16 `json:"bc"`
	DE        uint16 `json:"de"`
	HL        uint16 `json:"hl"`
	SP        uint16 `json:"sp"`
	PC        uint16 `json:"pc"`
	FrameHash uint64 `json:"frameHash,string"`
	SerialLen int    `json:"serialLen"`
}

// Server fans Snapshots out to every connected websocket client.
type Server struct {
	upgrader websocket.Upgrader
	log      log.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	last    Snapshot
}

// New returns a Server ready to be mounted on an http.ServeMux.
func New(logger log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]struct{}),
		log:      logger,
	}
}

// ListenAndServe serves the inspector endpoint at /debug on addr,
// blocking until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug", s.handle)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("debugserver: upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	last := s.last
	s.mu.Unlock()

	// seed the client with the most recent snapshot
	if err := conn.WriteJSON(last); err != nil {
		s.drop(conn)
	}
}

// Publish captures a snapshot of g and pushes it to every client.
// Called by the host between frames, never from inside the core.
func (s *Server) Publish(g *gameboy.GameBoy, frame []byte) {
	snap := Snapshot{
		AF: g.CPU.AF.Full(), BC: g.CPU.BC.Full(),
		DE: g.CPU.DE.Full(), HL: g.CPU.HL.Full(),
		SP: g.CPU.SP, PC: g.CPU.PC,
		SerialLen: len(g.SerialOutput()),
	}
	if frame != nil {
		snap.FrameHash = xxhash.Sum64(frame)
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.last = snap
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.Close()
}
