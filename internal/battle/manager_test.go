package battle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	manager := NewManager(store, Config{})
	t.Cleanup(manager.Close)
	return manager, store
}

// startMatch creates a room for p1, joins p2 and places both fleets.
func startMatch(
	t *testing.T,
	manager *Manager,
	p1Fleet, p2Fleet entities.Fleet,
) entities.Room {
	t.Helper()
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)

	room, session, err := manager.JoinRoom(ctx, room.Code, "p2")
	require.NoError(t, err)
	require.Equal(t, "p1", session.CurrentTurn)

	_, err = manager.PlaceFleet(ctx, room.Id, "p1", p1Fleet)
	require.NoError(t, err)
	result, err := manager.PlaceFleet(ctx, room.Id, "p2", p2Fleet)
	require.NoError(t, err)
	require.True(t, result.BothReady)
	require.Equal(t, "p1", result.TurnHolder)
	return room
}

func TestCreateRoom(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, entities.RoomWaiting, room.Status)
	assert.Equal(t, "p1", room.Player1Id)
	assert.Len(t, room.Code, 6)

	_, err = manager.CreateRoom(ctx, "p1")
	assert.ErrorIs(t, err, ErrDuplicateActiveRoom)
}

func TestJoinRoom(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)

	// Owner cannot join their own room.
	_, _, err = manager.JoinRoom(ctx, room.Code, "p1")
	assert.ErrorIs(t, err, ErrRoomNotJoinable)

	joined, session, err := manager.JoinRoom(ctx, room.Code, "p2")
	require.NoError(t, err)
	assert.Equal(t, entities.RoomPlaying, joined.Status)
	assert.Equal(t, "p2", joined.Player2Id)
	assert.Equal(t, entities.PhasePlacingShips, session.Phase)
	assert.Equal(t, "p1", session.CurrentTurn)

	// The room is no longer WAITING.
	_, _, err = manager.JoinRoom(ctx, room.Code, "p3")
	assert.ErrorIs(t, err, ErrRoomNotJoinable)

	_, _, err = manager.JoinRoom(ctx, "ZZZZZZ", "p3")
	assert.ErrorIs(t, err, ErrRoomNotJoinable)
}

func TestPlaceFleet(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)
	room, _, err = manager.JoinRoom(ctx, room.Code, "p2")
	require.NoError(t, err)

	result, err := manager.PlaceFleet(ctx, room.Id, "p1", validFleet())
	require.NoError(t, err)
	assert.False(t, result.BothReady)

	// A four-ship fleet is rejected whole; the phase does not advance.
	_, err = manager.PlaceFleet(ctx, room.Id, "p2", validFleet()[:4])
	assert.ErrorIs(t, err, ErrInvalidFleet)
	session, err := manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, entities.PhasePlacingShips, session.Phase)

	_, err = manager.PlaceFleet(ctx, room.Id, "intruder", validFleet())
	assert.ErrorIs(t, err, ErrNotAParticipant)

	result, err = manager.PlaceFleet(ctx, room.Id, "p2", validFleet())
	require.NoError(t, err)
	assert.True(t, result.BothReady)

	// Placement is gated on the PLACING_SHIPS phase.
	_, err = manager.PlaceFleet(ctx, room.Id, "p1", validFleet())
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestAttackBeforeBothReady(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)
	room, _, err = manager.JoinRoom(ctx, room.Code, "p2")
	require.NoError(t, err)

	_, err = manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 0})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestAttackTurnGate(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	_, err := manager.Attack(ctx, room.Id, "p2", entities.Coord{X: 9, Y: 9})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 10})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	// Turn alternates across accepted attacks, starting with player 1.
	result, err := manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 9, Y: 9})
	require.NoError(t, err)
	assert.False(t, result.Hit)

	session, err := manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, "p2", session.CurrentTurn)

	_, err = manager.Attack(ctx, room.Id, "p2", entities.Coord{X: 9, Y: 9})
	require.NoError(t, err)
	session, err = manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, "p1", session.CurrentTurn)
}

func TestAttackHitAndSink(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	// Defender's destroyer sits at (0,0)-(0,1).
	p2Fleet := entities.Fleet{
		{Name: "Carrier", Size: 5, Cells: row(9, 0, 5)},
		{Name: "Battleship", Size: 4, Cells: row(8, 0, 4)},
		{Name: "Cruiser", Size: 3, Cells: row(7, 0, 3)},
		{Name: "Submarine", Size: 3, Cells: row(6, 0, 3)},
		{Name: "Destroyer", Size: 2, Cells: row(0, 0, 2)},
	}
	room := startMatch(t, manager, validFleet(), p2Fleet)

	result, err := manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 0})
	require.NoError(t, err)
	assert.True(t, result.Hit)
	assert.Empty(t, result.SunkShip)
	assert.False(t, result.GameOver)

	_, err = manager.Attack(ctx, room.Id, "p2", entities.Coord{X: 5, Y: 5})
	require.NoError(t, err)

	result, err = manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 1})
	require.NoError(t, err)
	assert.True(t, result.Hit)
	assert.Equal(t, "Destroyer", result.SunkShip)
	assert.False(t, result.GameOver)
}

func TestAttackCellAlreadyAttacked(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	_, err := manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 0})
	require.NoError(t, err)
	_, err = manager.Attack(ctx, room.Id, "p2", entities.Coord{X: 9, Y: 9})
	require.NoError(t, err)

	// Same attacker, same target: rejected with no board change.
	before, err := manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	_, err = manager.Attack(ctx, room.Id, "p1", entities.Coord{X: 0, Y: 0})
	assert.ErrorIs(t, err, ErrCellAlreadyAttacked)

	after, err := manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, before.Moves, after.Moves)
	assert.Equal(t, before.Player2Board, after.Player2Board)
	assert.Equal(t, "p1", after.CurrentTurn)
}

func TestGameOverAndRatings(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	// Every cell of the defender's fleet, row by row.
	targets := []entities.Coord{}
	for _, ship := range validFleet() {
		targets = append(targets, ship.Cells...)
	}

	var last AttackResult
	for i, target := range targets {
		var err error
		last, err = manager.Attack(ctx, room.Id, "p1", target)
		require.NoError(t, err)
		assert.True(t, last.Hit)
		if i < len(targets)-1 {
			// Defender misses into open water to hand the turn back.
			miss := entities.Coord{X: 5 + i/10, Y: i % 10}
			_, err = manager.Attack(ctx, room.Id, "p2", miss)
			require.NoError(t, err)
		}
	}

	assert.True(t, last.GameOver)
	assert.Equal(t, "p1", last.WinnerId)
	require.NotNil(t, last.Ratings)
	assert.Equal(t, 1216, last.Ratings.Winner.Rating)
	assert.Equal(t, 16, last.Ratings.Winner.Delta)
	assert.Equal(t, 1184, last.Ratings.Loser.Rating)
	assert.Equal(t, -16, last.Ratings.Loser.Delta)
	assert.False(t, last.Degraded)

	// Session discarded, room finished, record archived.
	_, err := manager.GetSession(ctx, room.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	finished, err := store.GetRoom(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, entities.RoomFinished, finished.Status)
	assert.Equal(t, "p1", finished.WinnerId)

	record, ok := store.GetMatchRecord(ctx, room.Id)
	require.True(t, ok)
	assert.Equal(t, "p1", record.WinnerId)
	assert.Equal(t, entities.EndNormal, record.Reason)
	assert.Equal(t, len(targets)*2-1, record.TotalMoves)

	// Further attacks hit a discarded session.
	_, err = manager.Attack(ctx, room.Id, "p2", entities.Coord{X: 9, Y: 9})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestForfeit(t *testing.T) {
	manager, store := newTestManager(t)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	outcome, err := manager.Forfeit(ctx, room.Id, "p2", entities.EndDisconnect)
	require.NoError(t, err)
	assert.Equal(t, "p1", outcome.WinnerId)
	assert.Equal(t, "p2", outcome.LoserId)
	assert.Equal(t, entities.EndDisconnect, outcome.Reason)
	require.NotNil(t, outcome.Ratings)
	assert.Equal(t, 16, outcome.Ratings.Winner.Delta)

	record, ok := store.GetMatchRecord(ctx, room.Id)
	require.True(t, ok)
	assert.Equal(t, entities.EndDisconnect, record.Reason)

	// The session is discarded once the record lands.
	_, err = manager.Forfeit(ctx, room.Id, "p1", entities.EndSurrender)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentAttacksNeverLoseAnUpdate(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	// Two attack events from the same player race each other against ship
	// cells: exactly one resolves, and the loser's hit must not leak into
	// the stored fleet through its stale read.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []entities.Coord{{X: 0, Y: 0}, {X: 0, Y: 1}}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.Attack(ctx, room.Id, "p1", targets[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Equal(t, 1, succeeded)

	session, err := manager.GetSession(ctx, room.Id)
	require.NoError(t, err)
	assert.Len(t, session.Moves, 1)
	assert.Equal(t, "p2", session.CurrentTurn)

	// Only the winning attack's hit is registered on the carrier, and only
	// its cell is marked on the board.
	assert.Len(t, session.Player2Fleet[0].Hits, 1)
	marked := 0
	for _, target := range targets {
		if session.Player2Board.At(target) == entities.CellHit {
			marked++
		}
	}
	assert.Equal(t, 1, marked)
}

type flakyArchiveStore struct {
	*MemoryStore
	mu           sync.Mutex
	failuresLeft int
}

func (s *flakyArchiveStore) RecordMatch(
	ctx context.Context,
	room entities.Room,
	record entities.MatchRecord,
	ratings []entities.UserRating,
) error {
	s.mu.Lock()
	if s.failuresLeft > 0 {
		s.failuresLeft--
		s.mu.Unlock()
		return errors.New("transient archive failure")
	}
	s.mu.Unlock()
	return s.MemoryStore.RecordMatch(ctx, room, record, ratings)
}

func TestDegradedMatchEndRetainsConsistency(t *testing.T) {
	store := &flakyArchiveStore{MemoryStore: NewMemoryStore(), failuresLeft: 1}
	manager := NewManager(store, Config{})
	t.Cleanup(manager.Close)
	ctx := context.Background()
	room := startMatch(t, manager, validFleet(), validFleet())

	outcome, err := manager.Forfeit(ctx, room.Id, "p2", entities.EndSurrender)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.Equal(t, "p1", outcome.WinnerId)
	require.NotNil(t, outcome.Ratings)

	// While the durable unit is pending, no part of it is visible: the
	// room still reads PLAYING without a winner, no record exists, ratings
	// are unchanged, and the session is retained.
	current, err := store.GetRoom(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, entities.RoomPlaying, current.Status)
	assert.Empty(t, current.WinnerId)
	_, ok := store.GetMatchRecord(ctx, room.Id)
	assert.False(t, ok)
	rating, err := store.GetUserRating(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1200, rating.Rating)
	_, err = manager.GetSession(ctx, room.Id)
	require.NoError(t, err)

	// Close drains the retry queue; the whole unit lands together.
	manager.Close()

	current, err = store.GetRoom(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, entities.RoomFinished, current.Status)
	assert.Equal(t, "p1", current.WinnerId)
	record, ok := store.GetMatchRecord(ctx, room.Id)
	require.True(t, ok)
	assert.Equal(t, entities.EndSurrender, record.Reason)
	rating, err = store.GetUserRating(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1216, rating.Rating)
	_, err = manager.GetSession(ctx, room.Id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

type sessionCreateFailStore struct {
	*MemoryStore
	failNext bool
}

func (s *sessionCreateFailStore) CreateSession(ctx context.Context, session entities.Session) error {
	if s.failNext {
		s.failNext = false
		return errors.New("session table unavailable")
	}
	return s.MemoryStore.CreateSession(ctx, session)
}

func TestJoinRoomRevertsClaimOnSessionCreateFailure(t *testing.T) {
	store := &sessionCreateFailStore{MemoryStore: NewMemoryStore(), failNext: true}
	manager := NewManager(store, Config{})
	t.Cleanup(manager.Close)
	ctx := context.Background()

	room, err := manager.CreateRoom(ctx, "p1")
	require.NoError(t, err)

	_, _, err = manager.JoinRoom(ctx, room.Code, "p2")
	require.Error(t, err)

	current, err := store.GetRoom(ctx, room.Id)
	require.NoError(t, err)
	assert.Equal(t, entities.RoomWaiting, current.Status)
	assert.Empty(t, current.Player2Id)

	joined, session, err := manager.JoinRoom(ctx, room.Code, "p3")
	require.NoError(t, err)
	assert.Equal(t, "p3", joined.Player2Id)
	assert.Equal(t, entities.PhasePlacingShips, session.Phase)
}
