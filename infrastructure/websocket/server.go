// Package websocket exposes the chat engine over websocket connections.
package websocket

import (
	"context"
	"fmt"
	"livechat/services"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

type Options struct {
	AllowedOrigins       []string
	ConnectionBufferSize int
	MaxMessageSize       int64
	// Location renders message times on /chats, time.Local when nil
	Location *time.Location
}

// Server upgrades HTTP requests and owns every live client.
type Server struct {
	log      *slog.Logger
	service  services.IChatService
	opts     Options
	upgrader websocket.Upgrader
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	clients  map[*Client]struct{}
	closing  bool
	wg       sync.WaitGroup
}

func NewServer(log *slog.Logger, service services.IChatService, opts Options) *Server {
	policy, invalid := newOriginPolicy(opts.AllowedOrigins)
	for _, origin := range invalid {
		log.Warn("Ignoring invalid origin in configuration", "origin", origin)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		log:     log,
		service: service,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*Client]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			if policy.allows(r) {
				return true
			}
			log.Warn("Blocked websocket connection from disallowed origin", "origin", r.Header.Get("Origin"))
			return false
		},
	}
	return s
}

// Router serves the health text on /, the stored history on /chats
// and the websocket endpoint on /ws.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", s.health)
	r.Get("/chats", s.chats)
	r.Get("/ws", s.serveWS)
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "livechat is running, %d online\n", s.service.OnlineCount())
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		s.log.Debug("Websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, s.service, s.log, s.opts.ConnectionBufferSize, s.opts.MaxMessageSize, r.RemoteAddr)
	connectionID, err := s.service.Connect(s.ctx, client)
	if err != nil {
		s.log.Warn("Connection refused", "addr", r.RemoteAddr, "error", err)
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	client.connectionID = connectionID
	s.log.Debug("Client connected", "connection_id", connectionID, "addr", r.RemoteAddr)

	s.mu.Lock()
	s.clients[client] = struct{}{}
	if s.closing {
		client.GoAway()
	}
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		defer s.forget(client)
		client.readPump(s.ctx)
	}()
}

func (s *Server) forget(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, client)
}

// ClientCount is the number of live websocket connections.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// CloseAll sends a going-away close frame to every client and refuses new ones.
func (s *Server) CloseAll() {
	s.mu.Lock()
	s.closing = true
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.GoAway()
	}
}

// Wait blocks until every client goroutine is done or ctx ends.
// Commands still pending are then abandoned.
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	defer s.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateHTTPServer applies production timeouts. Websocket connections are hijacked
// so they are not bound by them.
func CreateHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
