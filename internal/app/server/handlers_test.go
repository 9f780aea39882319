package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	s := &server{
		hub:     newHub(),
		manager: battle.NewManager(battle.NewMemoryStore(), battle.Config{}),
	}
	t.Cleanup(s.manager.Close)
	return s
}

func command(t *testing.T, cmdType string, data interface{}) payload {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return payload{Type: cmdType, Data: raw}
}

func testFleet() entities.Fleet {
	cells := func(x, length int) []entities.Coord {
		out := make([]entities.Coord, 0, length)
		for y := 0; y < length; y++ {
			out = append(out, entities.Coord{X: x, Y: y})
		}
		return out
	}
	return entities.Fleet{
		{Name: "Carrier", Size: 5, Cells: cells(0, 5)},
		{Name: "Battleship", Size: 4, Cells: cells(1, 4)},
		{Name: "Cruiser", Size: 3, Cells: cells(2, 3)},
		{Name: "Submarine", Size: 3, Cells: cells(3, 3)},
		{Name: "Destroyer", Size: 2, Cells: cells(4, 2)},
	}
}

func TestHandleMessageMatchFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	p1 := &client{playerId: "p1"}
	p2 := &client{playerId: "p2"}
	s.handlePlayerConnect(p1)
	s.handlePlayerConnect(p2)

	s.handleMessage(p1, payload{Type: cmdCreateRoom})
	roomId := s.hub.roomOf("p1")
	require.NotEmpty(t, roomId)

	room, err := s.manager.GetRoom(ctx, roomId)
	require.NoError(t, err)

	s.handleMessage(p2, command(t, cmdJoinRoom, joinRoomCommand{Code: room.Code}))
	assert.Equal(t, roomId, s.hub.roomOf("p2"))

	s.handleMessage(p1, command(t, cmdPlaceFleet, placeFleetCommand{
		RoomId: roomId, Fleet: testFleet(),
	}))
	s.handleMessage(p2, command(t, cmdPlaceFleet, placeFleetCommand{
		RoomId: roomId, Fleet: testFleet(),
	}))

	session, err := s.manager.GetSession(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, entities.PhasePlaying, session.Phase)

	s.handleMessage(p1, command(t, cmdAttack, attackCommand{RoomId: roomId, X: 9, Y: 9}))
	session, err = s.manager.GetSession(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, session.Moves, 1)
	assert.Equal(t, entities.MoveMiss, session.Moves[0].Result)
	assert.Equal(t, "p2", session.CurrentTurn)

	s.handleMessage(p2, command(t, cmdSurrender, surrenderCommand{RoomId: roomId}))
	_, err = s.manager.GetSession(ctx, roomId)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)
	assert.Empty(t, s.hub.roomOf("p1"))
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	s := newTestServer(t)
	c := &client{playerId: "p1"}
	s.handlePlayerConnect(c)

	s.handleMessage(c, payload{Type: "no_such_command"})
	s.handleMessage(c, payload{Type: cmdAttack, Data: json.RawMessage(`{broken`)})
}

func TestDisconnectForfeitsActiveMatch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	p1 := &client{playerId: "p1"}
	p2 := &client{playerId: "p2"}
	s.handlePlayerConnect(p1)
	s.handlePlayerConnect(p2)

	s.handleMessage(p1, payload{Type: cmdCreateRoom})
	roomId := s.hub.roomOf("p1")
	room, err := s.manager.GetRoom(ctx, roomId)
	require.NoError(t, err)
	s.handleMessage(p2, command(t, cmdJoinRoom, joinRoomCommand{Code: room.Code}))
	s.handleMessage(p1, command(t, cmdPlaceFleet, placeFleetCommand{
		RoomId: roomId, Fleet: testFleet(),
	}))
	s.handleMessage(p2, command(t, cmdPlaceFleet, placeFleetCommand{
		RoomId: roomId, Fleet: testFleet(),
	}))

	s.handlePlayerDisconnect(p2)

	_, err = s.manager.GetSession(ctx, roomId)
	assert.ErrorIs(t, err, battle.ErrSessionNotFound)

	room, err = s.manager.GetRoom(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, entities.RoomFinished, room.Status)
	assert.Equal(t, "p1", room.WinnerId)
}
