// Package client implements the websocket client used by the chipjack
// CLI.
package client

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jykim/chipjack/internal/protocol"
)

const requestTimeout = 10 * time.Second

// PushHandler receives unsolicited server messages (settlement pushes).
type PushHandler func(*protocol.Message)

// Client is a websocket client with synchronous request/response
// correlation over the message envelope's request id.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	logger    zerolog.Logger

	mu        sync.Mutex
	connected bool
	pending   map[string]chan *protocol.Message
	onPush    PushHandler
	stop      chan struct{}
}

// New creates a client for the given server URL.
func New(serverURL string, logger zerolog.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		logger:    logger.With().Str("component", "client").Logger(),
		pending:   make(map[string]chan *protocol.Message),
		stop:      make(chan struct{}),
	}
}

// OnPush registers the handler for unsolicited messages.
func (c *Client) OnPush(h PushHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPush = h
}

// Connect dials the server and starts the reader.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Debug().Str("url", u.String()).Msg("connecting")
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()
	return nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	close(c.stop)

	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Request sends a payload and waits for the correlated reply. A reply of
// type error is returned as a *ServerError.
func (c *Client) Request(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	msg.RequestID = uuid.NewString()

	ch := make(chan *protocol.Message, 1)
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, fmt.Errorf("not connected")
	}
	c.pending[msg.RequestID] = ch
	err = c.conn.WriteJSON(msg)
	c.mu.Unlock()

	if err != nil {
		c.dropPending(msg.RequestID)
		return nil, err
	}

	select {
	case reply := <-ch:
		if reply.Type == protocol.TypeError {
			var e protocol.Error
			if err := reply.Decode(&e); err != nil {
				return nil, err
			}
			return nil, &ServerError{Code: e.Code, Message: e.Message}
		}
		return reply, nil
	case <-c.stop:
		return nil, fmt.Errorf("connection closed")
	case <-time.After(requestTimeout):
		c.dropPending(msg.RequestID)
		return nil, fmt.Errorf("request timed out")
	}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Client) readMessages() {
	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.stop:
			default:
				c.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.RequestID]
		if ok {
			delete(c.pending, msg.RequestID)
		}
		push := c.onPush
		c.mu.Unlock()

		if ok {
			ch <- &msg
		} else if push != nil {
			push(&msg)
		}
	}
}

// ServerError is an error reply from the server.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Convenience wrappers over Request.

// Hello binds the connection to an account name.
func (c *Client) Hello(name string) (*protocol.Welcome, error) {
	reply, err := c.Request(protocol.TypeHello, protocol.Hello{Name: name})
	if err != nil {
		return nil, err
	}
	var w protocol.Welcome
	if err := reply.Decode(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateRoom opens a room with the given stake.
func (c *Client) CreateRoom(stake int64) (string, error) {
	return c.okDetail(protocol.TypeCreateRoom, protocol.CreateRoom{Stake: stake})
}

// JoinRoom joins an open room.
func (c *Client) JoinRoom(roomID string) (string, error) {
	return c.okDetail(protocol.TypeJoinRoom, protocol.JoinRoom{RoomID: roomID})
}

// Escape leaves the current room.
func (c *Client) Escape() (string, error) {
	return c.okDetail(protocol.TypeEscape, nil)
}

// ToggleReady flips the ready flag.
func (c *Client) ToggleReady() (string, error) {
	return c.okDetail(protocol.TypeReady, nil)
}

// Start begins the round.
func (c *Client) Start() (string, error) {
	return c.okDetail(protocol.TypeStart, nil)
}

// Hit draws a card.
func (c *Client) Hit() (*protocol.CardDealt, error) {
	reply, err := c.Request(protocol.TypeHit, nil)
	if err != nil {
		return nil, err
	}
	var d protocol.CardDealt
	if err := reply.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Fix stops drawing.
func (c *Client) Fix() (string, error) {
	return c.okDetail(protocol.TypeFix, nil)
}

// ListRooms returns the room directory lines.
func (c *Client) ListRooms() ([]string, error) {
	reply, err := c.Request(protocol.TypeListRooms, nil)
	if err != nil {
		return nil, err
	}
	var r protocol.Rooms
	if err := reply.Decode(&r); err != nil {
		return nil, err
	}
	return r.Rooms, nil
}

// Hand returns the caller's current hand.
func (c *Client) Hand() (*protocol.HandState, error) {
	reply, err := c.Request(protocol.TypeHand, nil)
	if err != nil {
		return nil, err
	}
	var h protocol.HandState
	if err := reply.Decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Balance returns the caller's chip balance.
func (c *Client) Balance() (int64, error) {
	reply, err := c.Request(protocol.TypeBalance, nil)
	if err != nil {
		return 0, err
	}
	var b protocol.BalanceState
	if err := reply.Decode(&b); err != nil {
		return 0, err
	}
	return b.Balance, nil
}

// Results returns the settlement log.
func (c *Client) Results() ([]string, error) {
	reply, err := c.Request(protocol.TypeResults, nil)
	if err != nil {
		return nil, err
	}
	var r protocol.ResultList
	if err := reply.Decode(&r); err != nil {
		return nil, err
	}
	return r.Results, nil
}

// Mint credits chips to the caller.
func (c *Client) Mint(amount int64) (int64, error) {
	return c.balanceReply(protocol.TypeMint, protocol.Mint{Amount: amount})
}

// Exchange burns the caller's chips.
func (c *Client) Exchange(amount int64) (int64, error) {
	return c.balanceReply(protocol.TypeExchange, protocol.Exchange{Amount: amount})
}

func (c *Client) okDetail(msgType protocol.MessageType, payload any) (string, error) {
	reply, err := c.Request(msgType, payload)
	if err != nil {
		return "", err
	}
	var ok protocol.OK
	if err := reply.Decode(&ok); err != nil {
		return "", err
	}
	return ok.Detail, nil
}

func (c *Client) balanceReply(msgType protocol.MessageType, payload any) (int64, error) {
	reply, err := c.Request(msgType, payload)
	if err != nil {
		return 0, err
	}
	var b protocol.BalanceState
	if err := reply.Decode(&b); err != nil {
		return 0, err
	}
	return b.Balance, nil
}
