package battle

import (
	"context"
	"sync"
	"time"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/seabattle-vn/slbattle/pkg/utils"
)

// MemoryStore is a process-local Store for single-instance deployments and
// tests. Expiry mirrors the key/value store's TTL behavior: entries past
// their ExpiresAt are treated as absent.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    map[string]entities.Room
	byCode   map[string]string
	sessions map[string]entities.Session
	ratings  map[string]entities.UserRating
	records  map[string]entities.MatchRecord

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]entities.Room),
		byCode:   make(map[string]string),
		sessions: make(map[string]entities.Session),
		ratings:  make(map[string]entities.UserRating),
		records:  make(map[string]entities.MatchRecord),
		now:      time.Now,
	}
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room entities.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Id] = room
	s.byCode[room.Code] = room.Id
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, roomId string) (entities.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomId]
	if !ok || s.expired(room.ExpiresAt) {
		return entities.Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (s *MemoryStore) GetRoomByCode(ctx context.Context, code string) (entities.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomId, ok := s.byCode[code]
	if !ok {
		return entities.Room{}, ErrRoomNotFound
	}
	room, ok := s.rooms[roomId]
	if !ok || s.expired(room.ExpiresAt) {
		return entities.Room{}, ErrRoomNotFound
	}
	return room, nil
}

func (s *MemoryStore) UpdateRoom(
	ctx context.Context,
	room entities.Room,
	expect entities.RoomStatus,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[room.Id]
	if !ok || s.expired(current.ExpiresAt) {
		return ErrRoomNotFound
	}
	if current.Status != expect {
		return ErrRoomNotJoinable
	}
	s.rooms[room.Id] = room
	return nil
}

func (s *MemoryStore) ActiveRoomExists(ctx context.Context, ownerId string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.Player1Id == ownerId &&
			room.Status != entities.RoomFinished &&
			!s.expired(room.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateSession(ctx context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.RoomId] = session.Clone()
	return nil
}

// GetSession returns a detached copy. Callers mutate their copy freely; the
// stored session changes only through a successful PutSession, keeping the
// version check the sole commit point.
func (s *MemoryStore) GetSession(ctx context.Context, roomId string) (entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[roomId]
	if !ok || s.expired(session.ExpiresAt) {
		return entities.Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStore) PutSession(
	ctx context.Context,
	session entities.Session,
	expectedVersion int64,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.RoomId]
	if !ok || s.expired(current.ExpiresAt) {
		return ErrSessionNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionMismatch
	}
	s.sessions[session.RoomId] = session.Clone()
	return nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, roomId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, roomId)
	return nil
}

func (s *MemoryStore) GetUserRating(ctx context.Context, userId string) (entities.UserRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rating, ok := s.ratings[userId]; ok {
		return rating, nil
	}
	return entities.UserRating{UserId: userId, Rating: utils.DefaultRating}, nil
}

// RecordMatch applies the room's final state, the match record and both
// ratings as one unit, conditional on the room still being PLAYING. Nothing
// is written when the condition fails.
func (s *MemoryStore) RecordMatch(
	ctx context.Context,
	room entities.Room,
	record entities.MatchRecord,
	ratings []entities.UserRating,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rooms[room.Id]
	if !ok || s.expired(current.ExpiresAt) {
		return ErrRoomNotFound
	}
	if current.Status != entities.RoomPlaying {
		return ErrRoomNotJoinable
	}
	s.rooms[room.Id] = room
	s.records[record.RoomId] = record
	for _, rating := range ratings {
		s.ratings[rating.UserId] = rating
	}
	return nil
}

// GetMatchRecord exposes archived matches for the history read path.
func (s *MemoryStore) GetMatchRecord(ctx context.Context, roomId string) (entities.MatchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[roomId]
	return record, ok
}

func (s *MemoryStore) expired(expiresAt int64) bool {
	return expiresAt > 0 && s.now().Unix() >= expiresAt
}
