// Package ws serves the engine's message protocol over a local WebSocket
// endpoint. The browser extension connects from the same host; each
// request frame carries one envelope and receives exactly one reply frame
// on the same connection, at most once.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/errors"
	"github.com/c360/uploadguard/gateway"
)

// Path is the websocket endpoint path
const Path = "/v1/stream"

const (
	writeTimeout = 10 * time.Second

	// JSON string escaping can expand a chunk payload up to sixfold
	// (\uXXXX per byte); envelopeSlack covers the frame around it.
	chunkEncodingFactor = 6
	envelopeSlack       = 64 << 10
)

// Server is the local WebSocket transport
type Server struct {
	addr       string
	cfg        *config.SafeConfig
	dispatcher *gateway.Dispatcher
	logger     *slog.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader
	clients    map[string]*websocket.Conn
	clientsMu  sync.RWMutex

	// Lifecycle management
	shutdown    chan struct{}
	done        chan struct{}
	running     bool
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup

	connectionsTotal atomic.Int64
}

// NewServer creates a WebSocket transport bound to addr
func NewServer(addr string, cfg *config.SafeConfig, dispatcher *gateway.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       addr,
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Extensions send no Origin header or an extension origin;
			// the listener binds loopback, so origin checks add nothing.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients:  make(map[string]*websocket.Conn),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Initialize prepares the server (no-op)
func (s *Server) Initialize() error {
	return nil
}

// readLimit sizes the per-message read ceiling from the configured chunk
// size so an operator raising ChunkSize does not hit silent read-limit
// disconnects. Evaluated per connection, so config updates apply to new
// clients.
func (s *Server) readLimit() int64 {
	chunk := int64(config.DefaultChunkSize)
	if s.cfg != nil {
		if c := s.cfg.Get().Analysis.ChunkSize; c > chunk {
			chunk = c
		}
	}
	return chunk*chunkEncodingFactor + envelopeSlack
}

// Start begins listening and serving connections
func (s *Server) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "WSServer", "Start", "check running state")
	}

	mux := http.NewServeMux()
	mux.HandleFunc(Path, func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.WrapFatal(err, "WSServer", "Start", fmt.Sprintf("listen on %s", s.addr))
	}

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("websocket server stopped unexpectedly", "error", err)
		}
	}()

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("websocket transport listening", "addr", s.addr, "path", Path)
	return nil
}

// Stop closes the listener and drains connections
func (s *Server) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.running {
		return nil
	}

	close(s.shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("websocket server shutdown incomplete", "error", err)
	}

	s.clientsMu.Lock()
	for id, conn := range s.clients {
		conn.Close()
		delete(s.clients, id)
	}
	s.clientsMu.Unlock()

	waitCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"WSServer", "Stop", "graceful shutdown")
	}

	s.mu.Lock()
	s.running = false
	close(s.done)
	s.mu.Unlock()
	return nil
}

func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(s.readLimit())

	clientID := fmt.Sprintf("client-%d", s.connectionsTotal.Add(1))
	s.clientsMu.Lock()
	s.clients[clientID] = conn
	s.clientsMu.Unlock()

	s.logger.Debug("websocket client connected", "client", clientID, "remote", r.RemoteAddr)

	s.wg.Add(1)
	go s.serveClient(ctx, clientID, conn)
}

// serveClient reads request frames and writes replies. Requests on one
// connection are handled sequentially, which also serializes writes.
func (s *Server) serveClient(ctx context.Context, clientID string, conn *websocket.Conn) {
	defer s.wg.Done()
	defer func() {
		conn.Close()
		s.clientsMu.Lock()
		delete(s.clients, clientID)
		s.clientsMu.Unlock()
		s.logger.Debug("websocket client disconnected", "client", clientID)
	}()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ctx.Done():
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", "client", clientID, "error", err)
			}
			return
		}

		reply, err := s.dispatcher.Dispatch(ctx, data)
		if err != nil {
			s.logger.Warn("request rejected", "client", clientID, "error", err)
			reply = gateway.ErrorFrame(err)
		}

		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
			s.logger.Debug("websocket write failed", "client", clientID, "error", err)
			return
		}
	}
}
