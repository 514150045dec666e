package observer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	clientBuffer = 16
)

// Server fans snapshots out to websocket spectators. Publish is called
// from the game loop; handlers run on HTTP goroutines.
type Server struct {
	addr     string
	log      *zap.Logger
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
	latest  []byte
}

func NewServer(addr string, log *zap.Logger) *Server {
	return &Server{
		addr: addr,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // read-only feed
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Publish encodes snap once and queues it for every client. Slow clients
// drop frames instead of blocking the caller.
func (s *Server) Publish(snap Snapshot) {
	snap.Type = "SNAPSHOT"
	snap.ProtocolVersion = ProtocolVersion
	b, err := json.Marshal(snap)
	if err != nil {
		s.log.Error("encode snapshot", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	for id, ch := range s.clients {
		select {
		case ch <- b:
		default:
			s.log.Debug("observer dropped frame", zap.Uint64("client", id))
		}
	}
}

// Clients returns the number of connected spectators.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) join() (uint64, chan []byte) {
	id := s.nextID.Add(1)
	ch := make(chan []byte, clientBuffer)
	s.mu.Lock()
	if s.latest != nil {
		ch <- s.latest
	}
	s.clients[id] = ch
	s.mu.Unlock()
	return id, ch
}

func (s *Server) leave(id uint64) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

// Handler serves /ws (websocket feed) and /snapshot (latest frame as JSON).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/snapshot", s.handleSnapshot)
	return mux
}

func (s *Server) handleSnapshot(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	b := s.latest
	s.mu.Unlock()
	if b == nil {
		rw.WriteHeader(http.StatusNoContent)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(b)
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id, out := s.join()
	defer s.leave(id)
	s.log.Info("observer connected", zap.Uint64("client", id), zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(pingInterval)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: the feed is read-only, incoming messages only keep the
	// connection alive.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	// Best-effort wait for the writer to stop so it doesn't outlive conn.
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	s.log.Info("observer disconnected", zap.Uint64("client", id))
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("observer listening", zap.String("addr", s.addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
