package protocol

import (
	"errors"

	"github.com/jykim/chipjack/internal/deck"
	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
)

// Stable error codes surfaced to clients.
const (
	CodeInsufficientBalance = "insufficient_balance"
	CodeUnauthorized        = "unauthorized"
	CodeAlreadyInRoom       = "already_in_room"
	CodeRoomNotFound        = "room_not_found"
	CodeRoomFull            = "room_full"
	CodeNotInRoom           = "not_in_room"
	CodeGameActive          = "game_active"
	CodeRoomInactive        = "room_inactive"
	CodeNotOwner            = "not_owner"
	CodeNotEnoughPlayers    = "not_enough_players"
	CodeNotReady            = "not_ready"
	CodeAlreadyFixed        = "already_fixed"
	CodeHandLimit           = "hand_limit_exceeded"
	CodeDeckExhausted       = "deck_exhausted"
	CodeInvalidStake        = "invalid_stake"
	CodeOwnerEscape         = "owner_escape"
	CodeBadRequest          = "bad_request"
	CodeInternal            = "internal"
)

// ErrorCode maps a core error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ledger.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, game.ErrAlreadyInRoom):
		return CodeAlreadyInRoom
	case errors.Is(err, game.ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, game.ErrRoomFull):
		return CodeRoomFull
	case errors.Is(err, game.ErrNotInRoom):
		return CodeNotInRoom
	case errors.Is(err, game.ErrGameActive):
		return CodeGameActive
	case errors.Is(err, game.ErrRoomInactive):
		return CodeRoomInactive
	case errors.Is(err, game.ErrNotOwner):
		return CodeNotOwner
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return CodeNotEnoughPlayers
	case errors.Is(err, game.ErrNotReady):
		return CodeNotReady
	case errors.Is(err, game.ErrInsufficientFunds):
		return CodeInsufficientBalance
	case errors.Is(err, game.ErrInvalidStake):
		return CodeInvalidStake
	case errors.Is(err, game.ErrOwnerEscape):
		return CodeOwnerEscape
	case errors.Is(err, hand.ErrAlreadyFixed):
		return CodeAlreadyFixed
	case errors.Is(err, hand.ErrHandLimit):
		return CodeHandLimit
	case errors.Is(err, deck.ErrExhausted):
		return CodeDeckExhausted
	default:
		return CodeInternal
	}
}
