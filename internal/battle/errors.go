package battle

import "errors"

// Wire status codes surfaced to clients.
var (
	ErrStatusInvalidFleet           = "INVALID_FLEET"
	ErrStatusInvalidCoordinate      = "INVALID_COORDINATE"
	ErrStatusWrongPhase             = "WRONG_PHASE"
	ErrStatusNotYourTurn            = "NOT_YOUR_TURN"
	ErrStatusCellAlreadyAttacked    = "CELL_ALREADY_ATTACKED"
	ErrStatusNotAParticipant        = "NOT_A_PARTICIPANT"
	ErrStatusRoomNotJoinable        = "ROOM_NOT_JOINABLE"
	ErrStatusDuplicateActiveRoom    = "DUPLICATE_ACTIVE_ROOM"
	ErrStatusRoomNotFound           = "ROOM_NOT_FOUND"
	ErrStatusSessionNotFound        = "SESSION_NOT_FOUND"
	ErrStatusConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrStatusInternal               = "INTERNAL"
)

// Validation errors: rejected synchronously, never partially applied, safe
// to retry after correcting input.
var (
	ErrInvalidFleet        = errors.New("invalid fleet placement")
	ErrInvalidCoordinate   = errors.New("coordinate out of bounds")
	ErrWrongPhase          = errors.New("operation not allowed in current phase")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCellAlreadyAttacked = errors.New("cell already attacked")
	ErrNotAParticipant     = errors.New("player is not part of this match")
	ErrRoomNotJoinable     = errors.New("room not joinable")
	ErrDuplicateActiveRoom = errors.New("player already owns an unfinished room")
)

// Resource-absence errors: terminal for the operation, the client must
// re-enter matchmaking.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// Concurrency errors.
var (
	// ErrVersionMismatch is returned by a store when a conditional write
	// loses to a concurrent mutation. The manager retries on it.
	ErrVersionMismatch = errors.New("session version mismatch")

	// ErrConcurrentModification is surfaced when contention persists past
	// the retry budget. Transient; callers may retry the whole operation.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// StatusOf maps an engine error to its wire status code.
func StatusOf(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFleet):
		return ErrStatusInvalidFleet
	case errors.Is(err, ErrInvalidCoordinate):
		return ErrStatusInvalidCoordinate
	case errors.Is(err, ErrWrongPhase):
		return ErrStatusWrongPhase
	case errors.Is(err, ErrNotYourTurn):
		return ErrStatusNotYourTurn
	case errors.Is(err, ErrCellAlreadyAttacked):
		return ErrStatusCellAlreadyAttacked
	case errors.Is(err, ErrNotAParticipant):
		return ErrStatusNotAParticipant
	case errors.Is(err, ErrRoomNotJoinable):
		return ErrStatusRoomNotJoinable
	case errors.Is(err, ErrDuplicateActiveRoom):
		return ErrStatusDuplicateActiveRoom
	case errors.Is(err, ErrRoomNotFound):
		return ErrStatusRoomNotFound
	case errors.Is(err, ErrSessionNotFound):
		return ErrStatusSessionNotFound
	case errors.Is(err, ErrConcurrentModification), errors.Is(err, ErrVersionMismatch):
		return ErrStatusConcurrentModification
	default:
		return ErrStatusInternal
	}
}

// Retryable reports whether the caller may safely resubmit the same
// operation without changing its input.
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrVersionMismatch)
}
