package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jykim/chipjack/internal/deck"
	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
)

func TestNewMessageCarriesPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(TypeCreateRoom, CreateRoom{Stake: 50})
	require.NoError(t, err)
	assert.Equal(t, TypeCreateRoom, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var req CreateRoom
	require.NoError(t, msg.Decode(&req))
	assert.Equal(t, int64(50), req.Stake)
}

func TestNewMessageNilPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(TypeHit, nil)
	require.NoError(t, err)
	assert.Empty(t, msg.Data)

	// Decoding an empty payload is a no-op.
	var req JoinRoom
	require.NoError(t, msg.Decode(&req))
	assert.Empty(t, req.RoomID)
}

func TestEnvelopeWireFormat(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(TypeHello, Hello{Name: "alice"})
	require.NoError(t, err)
	msg.RequestID = "req-1"

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeHello, decoded.Type)
	assert.Equal(t, "req-1", decoded.RequestID)

	var hello Hello
	require.NoError(t, decoded.Decode(&hello))
	assert.Equal(t, "alice", hello.Name)
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		code string
	}{
		{ledger.ErrInsufficientBalance, CodeInsufficientBalance},
		{ledger.ErrUnauthorized, CodeUnauthorized},
		{game.ErrAlreadyInRoom, CodeAlreadyInRoom},
		{game.ErrRoomNotFound, CodeRoomNotFound},
		{game.ErrRoomFull, CodeRoomFull},
		{game.ErrNotInRoom, CodeNotInRoom},
		{game.ErrGameActive, CodeGameActive},
		{game.ErrRoomInactive, CodeRoomInactive},
		{game.ErrNotOwner, CodeNotOwner},
		{game.ErrNotEnoughPlayers, CodeNotEnoughPlayers},
		{game.ErrNotReady, CodeNotReady},
		{game.ErrInsufficientFunds, CodeInsufficientBalance},
		{game.ErrInvalidStake, CodeInvalidStake},
		{game.ErrOwnerEscape, CodeOwnerEscape},
		{hand.ErrAlreadyFixed, CodeAlreadyFixed},
		{hand.ErrHandLimit, CodeHandLimit},
		{deck.ErrExhausted, CodeDeckExhausted},
		{errors.New("boom"), CodeInternal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, ErrorCode(tc.err), "error %v", tc.err)
	}
}

func TestErrorCodeUnwrapsWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("joining: %w", game.ErrRoomFull)
	assert.Equal(t, CodeRoomFull, ErrorCode(wrapped))
}
