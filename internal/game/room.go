package game

import (
	"fmt"

	"github.com/jykim/chipjack/internal/ledger"
)

// Capacity is the number of seats in every room.
const Capacity = 2

// RoomID identifies a room. Each account owns at most one room, so the
// id derives from the owner.
type RoomID string

// Room is a two-seat game room. The owner is always the first
// participant. Exported fields are persisted via RoomState.
type Room struct {
	ID           RoomID
	Owner        ledger.Account
	CreatedAt    int64 // logical height at creation
	Stake        int64
	Participants []ledger.Account
	Active       bool
	StartHeight  int64

	ready map[ledger.Account]bool
}

func newRoom(owner ledger.Account, height, stake int64) *Room {
	return &Room{
		ID:        RoomID(owner),
		Owner:     owner,
		CreatedAt: height,
		Stake:     stake,
		ready:     make(map[ledger.Account]bool),
	}
}

func (r *Room) has(acct ledger.Account) bool {
	for _, p := range r.Participants {
		if p == acct {
			return true
		}
	}
	return false
}

func (r *Room) join(acct ledger.Account) {
	if r.has(acct) {
		return
	}
	r.Participants = append(r.Participants, acct)
}

func (r *Room) remove(acct ledger.Account) {
	for i, p := range r.Participants {
		if p == acct {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			break
		}
	}
	delete(r.ready, acct)
}

// Full reports whether every seat is taken.
func (r *Room) Full() bool {
	return len(r.Participants) >= Capacity
}

func (r *Room) toggleReady(acct ledger.Account) bool {
	r.ready[acct] = !r.ready[acct]
	return r.ready[acct]
}

// allReady returns the ready count and whether every participant is
// ready.
func (r *Room) allReady() (int, bool) {
	n := 0
	for _, p := range r.Participants {
		if r.ready[p] {
			n++
		}
	}
	return n, n == len(r.Participants)
}

func (r *Room) resetReady() {
	for acct := range r.ready {
		delete(r.ready, acct)
	}
}

// Summary renders the discovery line shown by room listings.
func (r *Room) Summary() string {
	occupancy := "has a vacant seat"
	if r.Full() {
		occupancy = "is Full"
	}
	return fmt.Sprintf("%s : (%d / %d). The room %s. Prize : %d. Creation time : %d",
		r.ID, len(r.Participants), Capacity, occupancy, r.Stake, r.CreatedAt)
}
