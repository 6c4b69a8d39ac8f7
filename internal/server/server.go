package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/ledger"
	"github.com/jykim/chipjack/internal/protocol"
)

// Server accepts websocket clients and routes their messages into the
// game service.
type Server struct {
	service    *Service
	upgrader   websocket.Upgrader
	sessions   map[*Session]bool
	register   chan *Session
	unregister chan *Session
	httpServer *http.Server
	mu         sync.RWMutex
	ctx        context.Context
	cancel     context.CancelFunc
	logger     zerolog.Logger
}

// NewServer creates a websocket server over the given service.
func NewServer(service *Service, logger zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions:   make(map[*Session]bool),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.With().Str("component", "server").Logger(),
	}
}

// Start serves websocket connections on addr until Shutdown.
func (s *Server) Start(addr string) error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	s.logger.Info().Str("addr", addr).Msg("starting websocket server")
	return s.httpServer.ListenAndServe()
}

// Shutdown closes all sessions and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for sess := range s.sessions {
		sess.close()
		_ = sess.conn.Close()
	}
	s.mu.Unlock()

	s.service.Flush()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles session lifecycle
func (s *Server) run() {
	for {
		select {
		case sess := <-s.register:
			s.mu.Lock()
			s.sessions[sess] = true
			total := len(s.sessions)
			s.mu.Unlock()
			s.logger.Info().Str("session_id", sess.ID).Int("total", total).Msg("client connected")

		case sess := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.sessions[sess]; ok {
				delete(s.sessions, sess)
			}
			total := len(s.sessions)
			s.mu.Unlock()
			s.logger.Info().Str("session_id", sess.ID).Int("total", total).Msg("client disconnected")

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	sess := NewSession(uuid.NewString(), conn, s, s.logger)
	s.register <- sess
	go sess.WritePump()
	go sess.ReadPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// sendToAccount delivers a message to every session bound to the account.
func (s *Server) sendToAccount(acct ledger.Account, msg *protocol.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for sess := range s.sessions {
		if sess.Account() == acct {
			if err := sess.Send(msg); err != nil {
				s.logger.Debug().Err(err).Str("account", string(acct)).Msg("push failed")
			}
		}
	}
}
