package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/ledger"
	"github.com/jykim/chipjack/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	// ErrSessionClosed is returned when sending on a closed session.
	ErrSessionClosed = errors.New("session closed")
	// ErrSendTimeout is returned when the session's send buffer stays full.
	ErrSendTimeout = errors.New("send timeout")
)

// Session represents one connected client. A session is anonymous until
// its hello message binds it to an account.
type Session struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	account ledger.Account
	closed  bool
	done    chan struct{}

	server *Server
	logger zerolog.Logger
}

// NewSession wraps an accepted websocket connection.
func NewSession(id string, conn *websocket.Conn, server *Server, logger zerolog.Logger) *Session {
	return &Session{
		ID:     id,
		conn:   conn,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		server: server,
		logger: logger.With().Str("component", "session").Str("session_id", id).Logger(),
	}
}

// Account returns the account bound to this session, if any.
func (s *Session) Account() ledger.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

func (s *Session) bind(acct ledger.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = acct
}

// Send queues an envelope for delivery.
func (s *Session) Send(msg *protocol.Message) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSessionClosed
	}
	s.mu.RUnlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-time.After(time.Second):
		return ErrSendTimeout
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

// ReadPump reads messages from the websocket connection and dispatches
// them to the server until the connection drops.
func (s *Session) ReadPump() {
	defer func() {
		s.server.unregister <- s
		_ = s.conn.Close()
		s.close()
	}()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error().Err(err).Msg("unexpected websocket close")
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.replyError(&protocol.Message{}, protocol.CodeBadRequest, "malformed message")
			continue
		}
		s.server.handleMessage(s, &msg)
	}
}

// WritePump writes queued messages and pings until the connection drops.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
		s.close()
	}()

	for {
		select {
		case data, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// reply sends a payload correlated to the request envelope.
func (s *Session) reply(req *protocol.Message, msgType protocol.MessageType, payload any) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode reply")
		return
	}
	msg.RequestID = req.RequestID
	if err := s.Send(msg); err != nil {
		s.logger.Debug().Err(err).Msg("failed to send reply")
	}
}

func (s *Session) replyError(req *protocol.Message, code, message string) {
	s.reply(req, protocol.TypeError, protocol.Error{Code: code, Message: message})
}
