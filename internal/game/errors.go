package game

import "errors"

var (
	// ErrAlreadyInRoom is returned when an account occupying a room tries
	// to create or join another one.
	ErrAlreadyInRoom = errors.New("already in a room")
	// ErrRoomNotFound is returned for an unknown room id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when joining a room at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrNotInRoom is returned for room operations by an account that
	// occupies no room.
	ErrNotInRoom = errors.New("not in a room")
	// ErrGameActive is returned when an operation is forbidden while a
	// round is in progress.
	ErrGameActive = errors.New("game already active")
	// ErrRoomInactive is returned for round operations outside a round.
	ErrRoomInactive = errors.New("no active game in room")
	// ErrNotOwner is returned when a non-owner tries an owner operation.
	ErrNotOwner = errors.New("only the room owner may do that")
	// ErrNotEnoughPlayers is returned when starting an underfull room.
	ErrNotEnoughPlayers = errors.New("not enough players")
	// ErrNotReady is returned when starting before everyone is ready.
	ErrNotReady = errors.New("not all players are ready")
	// ErrInsufficientFunds is returned when an account cannot cover the
	// room's stake.
	ErrInsufficientFunds = errors.New("insufficient funds for stake")
	// ErrInvalidStake is returned for a zero or negative stake.
	ErrInvalidStake = errors.New("stake must be positive")
	// ErrOwnerEscape is returned when the owner tries to leave a room
	// that still seats another participant. The room id derives from the
	// owner, so the owner leaves last.
	ErrOwnerEscape = errors.New("owner cannot escape an occupied room")
)
