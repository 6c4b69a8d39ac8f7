package game

import "github.com/jykim/chipjack/internal/ledger"

// Registry tracks open rooms in creation order and which room each
// account occupies. An account occupies at most one room at a time.
type Registry struct {
	rooms    map[RoomID]*Room
	occupied map[ledger.Account]RoomID
	order    []RoomID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[RoomID]*Room),
		occupied: make(map[ledger.Account]RoomID),
	}
}

// Get returns the room with the given id.
func (r *Registry) Get(id RoomID) (*Room, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

// RoomOf returns the room the account occupies.
func (r *Registry) RoomOf(acct ledger.Account) (*Room, bool) {
	id, ok := r.occupied[acct]
	if !ok {
		return nil, false
	}
	return r.Get(id)
}

// Occupied reports whether the account is in any room.
func (r *Registry) Occupied(acct ledger.Account) bool {
	_, ok := r.occupied[acct]
	return ok
}

// List returns all open rooms in creation order.
func (r *Registry) List() []*Room {
	out := make([]*Room, 0, len(r.order))
	for _, id := range r.order {
		if room, ok := r.rooms[id]; ok {
			out = append(out, room)
		}
	}
	return out
}

func (r *Registry) add(room *Room) {
	r.rooms[room.ID] = room
	r.order = append(r.order, room.ID)
}

func (r *Registry) occupy(acct ledger.Account, id RoomID) {
	r.occupied[acct] = id
}

func (r *Registry) release(acct ledger.Account) {
	delete(r.occupied, acct)
}

func (r *Registry) destroy(id RoomID) {
	delete(r.rooms, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
