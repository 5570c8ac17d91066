// Package server streams fluid frames to websocket clients and accepts
// parameter updates from them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/sph/fluid"
)

const writeTimeout = 2 * time.Second

// FrameSource provides the most recently published frame.
type FrameSource interface {
	Latest() *fluid.Frame
	Seq() uint64
}

// Server broadcasts frames over /ws at a fixed rate.
type Server struct {
	addr    string
	period  time.Duration
	source  FrameSource
	updates chan<- ParamUpdate

	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	lastSeq uint64
}

// New creates a server. Client updates are offered to the updates channel
// without blocking; a nil channel discards them.
func New(addr string, broadcastHz float64, source FrameSource, updates chan<- ParamUpdate) *Server {
	if !(broadcastHz > 0) {
		broadcastHz = 30
	}
	return &Server{
		addr:    addr,
		period:  time.Duration(float64(time.Second) / broadcastHz),
		source:  source,
		updates: updates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Handler returns the HTTP handler serving /ws and a /status summary.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Run serves until ctx is cancelled, broadcasting at the configured rate.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("websocket server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			s.closeClients()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serving %s: %w", s.addr, err)
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Broadcast sends the latest frame to every client if it is newer than the
// last one sent. Clients whose write fails are dropped. Not safe for
// concurrent use; Run calls it from its own loop.
func (s *Server) Broadcast() {
	seq := s.source.Seq()
	if seq == s.lastSeq {
		return
	}
	frame := s.source.Latest()
	if frame == nil {
		return
	}
	s.lastSeq = seq

	data, err := json.Marshal(NewFrameMessage(frame))
	if err != nil {
		slog.Error("encoding frame", "error", err)
		return
	}

	var failed []*websocket.Conn
	s.clientsMu.RLock()
	for conn, mu := range s.clients {
		if err := writeMessage(conn, mu, data); err != nil {
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	for _, conn := range failed {
		s.removeClient(conn)
		conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Clients int    `json:"clients"`
		Seq     uint64 `json:"seq"`
		Step    uint64 `json:"step"`
	}{Clients: s.ClientCount(), Seq: s.source.Seq()}
	if f := s.source.Latest(); f != nil {
		status.Step = f.Step
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Warn("writing status", "error", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	mu := &sync.Mutex{}

	// Send the current frame before registering so a new client never
	// waits a full broadcast period.
	if frame := s.source.Latest(); frame != nil {
		data, err := json.Marshal(NewFrameMessage(frame))
		if err == nil {
			err = writeMessage(conn, mu, data)
		}
		if err != nil {
			slog.Warn("sending initial frame", "remote", r.RemoteAddr, "error", err)
			return
		}
	}

	s.clientsMu.Lock()
	s.clients[conn] = mu
	s.clientsMu.Unlock()
	defer s.removeClient(conn)

	slog.Info("client connected", "remote", r.RemoteAddr, "clients", s.ClientCount())

	for {
		var update ParamUpdate
		if err := conn.ReadJSON(&update); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		s.offer(update)
	}
}

func (s *Server) offer(update ParamUpdate) {
	if s.updates == nil {
		return
	}
	select {
	case s.updates <- update:
	default:
		slog.Warn("dropping parameter update, driver busy")
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	delete(s.clients, conn)
	s.clientsMu.Unlock()
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for conn, mu := range s.clients {
		mu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeTimeout))
		mu.Unlock()
		conn.Close()
		delete(s.clients, conn)
	}
}

func writeMessage(conn *websocket.Conn, mu *sync.Mutex, data []byte) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
