package battle

import (
	"context"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

// RoomStore holds lobby-level rooms. Implementations must make Update
// conditional on the expected status so a WAITING room can only be claimed
// once.
type RoomStore interface {
	CreateRoom(ctx context.Context, room entities.Room) error
	GetRoom(ctx context.Context, roomId string) (entities.Room, error)
	GetRoomByCode(ctx context.Context, code string) (entities.Room, error)
	// UpdateRoom rewrites the room conditionally on its current status;
	// returns ErrRoomNotJoinable when the condition fails.
	UpdateRoom(ctx context.Context, room entities.Room, expect entities.RoomStatus) error
	// ActiveRoomExists reports whether the player owns an unfinished room.
	ActiveRoomExists(ctx context.Context, ownerId string) (bool, error)
}

// SessionStore holds the single authoritative transient record per active
// match. Every write refreshes the entry's time-to-live so abandoned
// matches self-expire.
type SessionStore interface {
	CreateSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, roomId string) (entities.Session, error)
	// PutSession rewrites the session conditionally on expectedVersion
	// being the stored version; returns ErrVersionMismatch otherwise.
	PutSession(ctx context.Context, session entities.Session, expectedVersion int64) error
	DeleteSession(ctx context.Context, roomId string) error
}

// RatingStore reads player ratings. Missing players get the default rating.
type RatingStore interface {
	GetUserRating(ctx context.Context, userId string) (entities.UserRating, error)
}

// Archiver durably records a finished match: the room's final state, the
// match record and both updated ratings must land in one atomic unit of
// work, conditional on the room still being PLAYING.
type Archiver interface {
	RecordMatch(ctx context.Context, room entities.Room, record entities.MatchRecord, ratings []entities.UserRating) error
}

// Store bundles the four persistence concerns the manager composes.
type Store interface {
	RoomStore
	SessionStore
	RatingStore
	Archiver
}
