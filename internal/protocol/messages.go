// Package protocol defines the JSON wire messages exchanged between the
// chipjack server and its clients.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	TypeHello      MessageType = "hello"
	TypeCreateRoom MessageType = "create_room"
	TypeJoinRoom   MessageType = "join_room"
	TypeEscape     MessageType = "escape"
	TypeReady      MessageType = "ready"
	TypeStart      MessageType = "start"
	TypeHit        MessageType = "hit"
	TypeFix        MessageType = "fix"
	TypeListRooms  MessageType = "list_rooms"
	TypeHand       MessageType = "hand"
	TypeBalance    MessageType = "balance"
	TypeResults    MessageType = "results"
	TypeMint       MessageType = "mint"
	TypeExchange   MessageType = "exchange"

	// Server to client messages
	TypeWelcome      MessageType = "welcome"
	TypeOK           MessageType = "ok"
	TypeError        MessageType = "error"
	TypeRooms        MessageType = "rooms"
	TypeHandState    MessageType = "hand_state"
	TypeBalanceState MessageType = "balance_state"
	TypeResultList   MessageType = "result_list"
	TypeCardDealt    MessageType = "card_dealt"
	TypeRoundSettled MessageType = "round_settled"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the wire envelope. Data carries the type-specific payload.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates an envelope with the payload marshaled into Data.
func NewMessage(messageType MessageType, payload any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = data
	}
	return msg, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Client to server payloads

// Hello binds the connection to an account name.
type Hello struct {
	Name string `json:"name"`
}

// CreateRoom opens a room with the given stake.
type CreateRoom struct {
	Stake int64 `json:"stake"`
}

// JoinRoom joins an open room by id.
type JoinRoom struct {
	RoomID string `json:"room_id"`
}

// Mint credits chips to the caller, standing in for external value
// received by the treasury.
type Mint struct {
	Amount int64 `json:"amount"`
}

// Exchange burns the caller's chips back into external value.
type Exchange struct {
	Amount int64 `json:"amount"`
}

// Server to client payloads

// Welcome acknowledges a hello.
type Welcome struct {
	Account string `json:"account"`
	Session string `json:"session"`
}

// OK acknowledges a mutation with an optional detail line.
type OK struct {
	Detail string `json:"detail,omitempty"`
}

// Error carries a stable code plus a human message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Rooms is the room directory, one formatted line per open room.
type Rooms struct {
	Rooms []string `json:"rooms"`
}

// HandState shows the caller's current hand.
type HandState struct {
	Cards []string `json:"cards"`
	Value int      `json:"value"`
	Fixed bool     `json:"fixed"`
}

// BalanceState reports the caller's chip balance.
type BalanceState struct {
	Balance int64 `json:"balance"`
}

// ResultList is the append-only settlement log.
type ResultList struct {
	Results []string `json:"results"`
}

// CardDealt reports the card drawn by a hit.
type CardDealt struct {
	Card  string `json:"card"`
	Value int    `json:"value"`
	Fixed bool   `json:"fixed"`
	Bust  bool   `json:"bust"`
}

// RoundSettled is pushed to both participants when a round settles.
type RoundSettled struct {
	Room       string `json:"room"`
	Winner     string `json:"winner,omitempty"`
	Loser      string `json:"loser,omitempty"`
	Draw       bool   `json:"draw,omitempty"`
	Record     string `json:"record"`
	Banned     bool   `json:"banned,omitempty"`
	RoomClosed bool   `json:"room_closed,omitempty"`
	Balance    int64  `json:"balance"`
}
