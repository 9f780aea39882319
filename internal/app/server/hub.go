package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

// client is one live connection bound to exactly one player identity for
// its lifetime. A player may hold several connections at once.
type client struct {
	conn     *websocket.Conn
	playerId string
	mu       sync.Mutex
}

func (c *client) writeJson(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.WriteJSON(msg)
}

// hub tracks live connections, the player each one belongs to and the
// grouping of connections under rooms for idempotent room broadcasts.
type hub struct {
	mu         sync.RWMutex
	players    map[string]map[*client]struct{}
	rooms      map[string]map[*client]struct{}
	playerRoom map[string]string
}

func newHub() *hub {
	return &hub{
		players:    make(map[string]map[*client]struct{}),
		rooms:      make(map[string]map[*client]struct{}),
		playerRoom: make(map[string]string),
	}
}

func (h *hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.players[c.playerId] == nil {
		h.players[c.playerId] = make(map[*client]struct{})
	}
	h.players[c.playerId][c] = struct{}{}
}

// unregister drops the connection. It returns the room the player was in
// and whether this was the player's last live connection.
func (h *hub) unregister(c *client) (roomId string, lastConn bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.players[c.playerId]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.players, c.playerId)
			lastConn = true
		}
	}
	for id, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, id)
		}
	}
	return h.playerRoom[c.playerId], lastConn
}

// joinRoom groups every live connection of the player under the room.
func (h *hub) joinRoom(playerId, roomId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomId] == nil {
		h.rooms[roomId] = make(map[*client]struct{})
	}
	for c := range h.players[playerId] {
		h.rooms[roomId][c] = struct{}{}
	}
	h.playerRoom[playerId] = roomId
}

// clearRoom drops the room grouping once a match has concluded.
func (h *hub) clearRoom(roomId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomId)
	for playerId, id := range h.playerRoom {
		if id == roomId {
			delete(h.playerRoom, playerId)
		}
	}
}

func (h *hub) roomOf(playerId string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.playerRoom[playerId]
}

func (h *hub) broadcastRoom(roomId string, msg interface{}) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[roomId]))
	for c := range h.rooms[roomId] {
		members = append(members, c)
	}
	h.mu.RUnlock()
	for _, c := range members {
		if err := c.writeJson(msg); err != nil {
			logging.Error("couldn't notify player",
				zap.String("player_id", c.playerId),
				zap.Error(err),
			)
		}
	}
}

func (h *hub) broadcastAll(msg interface{}) {
	h.mu.RLock()
	all := make([]*client, 0)
	for _, conns := range h.players {
		for c := range conns {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range all {
		if err := c.writeJson(msg); err != nil {
			logging.Error("couldn't notify player",
				zap.String("player_id", c.playerId),
				zap.Error(err),
			)
		}
	}
}

func (h *hub) sendToPlayer(playerId string, msg interface{}) bool {
	h.mu.RLock()
	conns := make([]*client, 0, len(h.players[playerId]))
	for c := range h.players[playerId] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	for _, c := range conns {
		if err := c.writeJson(msg); err != nil {
			logging.Error("couldn't notify player",
				zap.String("player_id", playerId),
				zap.Error(err),
			)
		}
	}
	return len(conns) > 0
}

func (h *hub) onlinePlayers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	players := make([]string, 0, len(h.players))
	for playerId := range h.players {
		players = append(players, playerId)
	}
	return players
}
