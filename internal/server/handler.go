package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jykim/chipjack/internal/game"
	"github.com/jykim/chipjack/internal/hand"
	"github.com/jykim/chipjack/internal/ledger"
	"github.com/jykim/chipjack/internal/protocol"
)

// handleMessage dispatches one client envelope. Every game operation
// requires a bound account; hello binds it.
func (s *Server) handleMessage(sess *Session, msg *protocol.Message) {
	if msg.Type == protocol.TypeHello {
		s.handleHello(sess, msg)
		return
	}

	acct := sess.Account()
	if acct == "" {
		sess.replyError(msg, protocol.CodeUnauthorized, "send hello first")
		return
	}

	switch msg.Type {
	case protocol.TypeCreateRoom:
		var req protocol.CreateRoom
		if err := msg.Decode(&req); err != nil {
			sess.replyError(msg, protocol.CodeBadRequest, "malformed create_room")
			return
		}
		id, err := s.service.CreateRoom(acct, req.Stake)
		if err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: fmt.Sprintf("room %s created", id)})

	case protocol.TypeJoinRoom:
		var req protocol.JoinRoom
		if err := msg.Decode(&req); err != nil {
			sess.replyError(msg, protocol.CodeBadRequest, "malformed join_room")
			return
		}
		if err := s.service.JoinRoom(acct, game.RoomID(req.RoomID)); err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: fmt.Sprintf("joined room %s", req.RoomID)})

	case protocol.TypeEscape:
		if err := s.service.Escape(acct); err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: "escaped"})

	case protocol.TypeReady:
		ready, err := s.service.ToggleReady(acct)
		if err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		detail := "not ready"
		if ready {
			detail = "ready"
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: detail})

	case protocol.TypeStart:
		if err := s.service.GameStart(acct); err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: "round started"})

	case protocol.TypeHit:
		card, h, outcome, err := s.service.Hit(acct)
		if err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeCardDealt, protocol.CardDealt{
			Card:  card.String(),
			Value: h.Value,
			Fixed: h.Fixed,
			Bust:  h.Busted(),
		})
		s.broadcastOutcome(outcome)

	case protocol.TypeFix:
		outcome, err := s.service.Fix(acct)
		if err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeOK, protocol.OK{Detail: "hand fixed"})
		s.broadcastOutcome(outcome)

	case protocol.TypeListRooms:
		sess.reply(msg, protocol.TypeRooms, protocol.Rooms{Rooms: s.service.ListRooms()})

	case protocol.TypeHand:
		h, err := s.service.Hand(acct)
		if err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeHandState, handState(h))

	case protocol.TypeBalance:
		sess.reply(msg, protocol.TypeBalanceState, protocol.BalanceState{Balance: s.service.Balance(acct)})

	case protocol.TypeResults:
		sess.reply(msg, protocol.TypeResultList, protocol.ResultList{Results: s.service.Results()})

	case protocol.TypeMint:
		var req protocol.Mint
		if err := msg.Decode(&req); err != nil {
			sess.replyError(msg, protocol.CodeBadRequest, "malformed mint")
			return
		}
		if err := s.service.Mint(acct, req.Amount); err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeBalanceState, protocol.BalanceState{Balance: s.service.Balance(acct)})

	case protocol.TypeExchange:
		var req protocol.Exchange
		if err := msg.Decode(&req); err != nil {
			sess.replyError(msg, protocol.CodeBadRequest, "malformed exchange")
			return
		}
		if err := s.service.Exchange(acct, req.Amount); err != nil {
			s.replyCoreError(sess, msg, err)
			return
		}
		sess.reply(msg, protocol.TypeBalanceState, protocol.BalanceState{Balance: s.service.Balance(acct)})

	default:
		sess.replyError(msg, protocol.CodeBadRequest, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) handleHello(sess *Session, msg *protocol.Message) {
	var req protocol.Hello
	if err := msg.Decode(&req); err != nil {
		sess.replyError(msg, protocol.CodeBadRequest, "malformed hello")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || ledger.Account(name) == EscrowAccount {
		sess.replyError(msg, protocol.CodeBadRequest, "invalid account name")
		return
	}

	sess.bind(ledger.Account(name))
	sess.reply(msg, protocol.TypeWelcome, protocol.Welcome{Account: name, Session: sess.ID})
	s.logger.Info().Str("session_id", sess.ID).Str("account", name).Msg("session bound")
}

func (s *Server) replyCoreError(sess *Session, msg *protocol.Message, err error) {
	if errors.Is(err, ErrMintLimit) {
		sess.replyError(msg, protocol.CodeBadRequest, err.Error())
		return
	}
	sess.replyError(msg, protocol.ErrorCode(err), err.Error())
}

// broadcastOutcome pushes settlement to both participants, each with its
// own post-settlement balance.
func (s *Server) broadcastOutcome(outcome *game.RoundOutcome) {
	if outcome == nil {
		return
	}

	for _, p := range outcome.Participants {
		msg, err := protocol.NewMessage(protocol.TypeRoundSettled, protocol.RoundSettled{
			Room:       string(outcome.Room),
			Winner:     string(outcome.Winner),
			Loser:      string(outcome.Loser),
			Draw:       outcome.Draw,
			Record:     outcome.Record,
			Banned:     outcome.Banned,
			RoomClosed: outcome.RoomClosed,
			Balance:    s.service.Balance(p),
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to encode settlement push")
			return
		}
		s.sendToAccount(p, msg)
	}
}

func handState(h hand.Hand) protocol.HandState {
	cards := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		cards[i] = c.String()
	}
	return protocol.HandState{Cards: cards, Value: h.Value, Fixed: h.Fixed}
}
