package tui

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jykim/chipjack/internal/protocol"
)

// fakeBackend records calls and returns canned replies.
type fakeBackend struct {
	lastCall string
	balance  int64
	rooms    []string
	err      error
}

func (f *fakeBackend) CreateRoom(stake int64) (string, error) {
	f.lastCall = "create"
	return "Created room alice", f.err
}
func (f *fakeBackend) JoinRoom(roomID string) (string, error) {
	f.lastCall = "join " + roomID
	return "Joined room " + roomID, f.err
}
func (f *fakeBackend) Escape() (string, error)      { f.lastCall = "escape"; return "Left the room", f.err }
func (f *fakeBackend) ToggleReady() (string, error) { f.lastCall = "ready"; return "Ready", f.err }
func (f *fakeBackend) Start() (string, error)       { f.lastCall = "start"; return "Round started", f.err }
func (f *fakeBackend) Hit() (*protocol.CardDealt, error) {
	f.lastCall = "hit"
	return &protocol.CardDealt{Card: "A♠", Value: 11}, f.err
}
func (f *fakeBackend) Fix() (string, error) { f.lastCall = "fix"; return "Hand fixed", f.err }
func (f *fakeBackend) ListRooms() ([]string, error) {
	f.lastCall = "rooms"
	return f.rooms, f.err
}
func (f *fakeBackend) Hand() (*protocol.HandState, error) {
	f.lastCall = "hand"
	return &protocol.HandState{Cards: []string{"A♠", "7♥"}, Value: 18}, f.err
}
func (f *fakeBackend) Balance() (int64, error) { f.lastCall = "balance"; return f.balance, f.err }
func (f *fakeBackend) Results() ([]string, error) {
	f.lastCall = "results"
	return []string{"alice wins against bob."}, f.err
}
func (f *fakeBackend) Mint(amount int64) (int64, error) {
	f.lastCall = "mint"
	f.balance += amount
	return f.balance, f.err
}
func (f *fakeBackend) Exchange(amount int64) (int64, error) {
	f.lastCall = "exchange"
	f.balance -= amount
	return f.balance, f.err
}

func newTestModel(backend Backend) *Model {
	return NewModel(backend, "alice", 0, make(chan *protocol.Message, 1), zerolog.Nop())
}

func runCommand(t *testing.T, m *Model, line string) resultMsg {
	t.Helper()
	msg := m.dispatch(line)()
	res, ok := msg.(resultMsg)
	require.True(t, ok, "expected resultMsg, got %T", msg)
	return res
}

func TestMintCommand(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	m := newTestModel(backend)

	res := runCommand(t, m, "mint 100")
	assert.Equal(t, "mint", backend.lastCall)
	assert.False(t, res.isErr)
	assert.Equal(t, int64(100), res.balance)
}

func TestJoinRequiresRoomArgument(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	m := newTestModel(backend)

	res := runCommand(t, m, "join")
	assert.True(t, res.isErr)
	assert.Empty(t, backend.lastCall)

	res = runCommand(t, m, "join bob")
	assert.False(t, res.isErr)
	assert.Equal(t, "join bob", backend.lastCall)
}

func TestInvalidAmountRejectedLocally(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{}
	m := newTestModel(backend)

	res := runCommand(t, m, "mint lots")
	assert.True(t, res.isErr)
	assert.Empty(t, backend.lastCall)
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	m := newTestModel(&fakeBackend{})

	res := runCommand(t, m, "flarp")
	assert.True(t, res.isErr)
	require.Len(t, res.lines, 1)
	assert.Contains(t, res.lines[0], "unknown command")
}

func TestBackendErrorSurfaces(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{err: errors.New("room_full: room is full")}
	m := newTestModel(backend)

	res := runCommand(t, m, "start")
	assert.True(t, res.isErr)
	assert.Contains(t, res.lines[0], "room_full")
}

func TestRoomsCommand(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{rooms: []string{"alice : (1 / 2)."}}
	m := newTestModel(backend)

	res := runCommand(t, m, "rooms")
	assert.Equal(t, backend.rooms, res.lines)

	backend.rooms = nil
	res = runCommand(t, m, "rooms")
	require.Len(t, res.lines, 1)
	assert.Equal(t, "No open rooms.", res.lines[0])
}

func TestSettlementPushUpdatesModel(t *testing.T) {
	t.Parallel()
	m := newTestModel(&fakeBackend{})

	msg, err := protocol.NewMessage(protocol.TypeRoundSettled, protocol.RoundSettled{
		Room:    "alice",
		Winner:  "bob",
		Loser:   "alice",
		Record:  "bob wins against alice.",
		Balance: 25,
	})
	require.NoError(t, err)

	m.handlePush(msg)
	assert.Equal(t, int64(25), m.balance)
	assert.Contains(t, m.log[len(m.log)-1], "bob wins against alice.")
}

func TestNonSettlementPushIgnored(t *testing.T) {
	t.Parallel()
	m := newTestModel(&fakeBackend{})
	before := len(m.log)

	msg, err := protocol.NewMessage(protocol.TypeOK, protocol.OK{})
	require.NoError(t, err)
	m.handlePush(msg)
	assert.Len(t, m.log, before)
}
