package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"github.com/seabattle-vn/slbattle/pkg/utils"
	"go.uber.org/zap"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// roomCodeLength gives a 36^6 code space, large enough to make accidental
// collision negligible.
const roomCodeLength = 6

type Config struct {
	MaxRetries     int
	RoomTTL        time.Duration
	SessionTTL     time.Duration
	ArchiveTimeout time.Duration
	KFactor        float64
}

func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RoomTTL <= 0 {
		c.RoomTTL = time.Hour
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.ArchiveTimeout <= 0 {
		c.ArchiveTimeout = 5 * time.Second
	}
	if c.KFactor <= 0 {
		c.KFactor = utils.DefaultKFactor
	}
	return c
}

// Manager orchestrates match creation, joining and the
// PLACING_SHIPS -> PLAYING -> FINISHED lifecycle. Every session mutation
// goes through an optimistic read-modify-write against the injected store,
// so two players' concurrent events can never both succeed from a stale
// read.
type Manager struct {
	store Store
	cfg   Config

	archiveCh chan archiveJob
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type archiveJob struct {
	record  entities.MatchRecord
	ratings []entities.UserRating
}

func NewManager(store Store, cfg Config) *Manager {
	m := &Manager{
		store:     store,
		cfg:       cfg.withDefaults(),
		archiveCh: make(chan archiveJob, 64),
	}
	m.wg.Add(1)
	go m.archiveWorker()
	return m
}

// Close drains the out-of-band archive queue and stops the worker.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.archiveCh)
	})
	m.wg.Wait()
}

// CreateRoom opens a WAITING room with a fresh join code. A player may own
// only one unfinished room at a time.
func (m *Manager) CreateRoom(ctx context.Context, ownerId string) (entities.Room, error) {
	exists, err := m.store.ActiveRoomExists(ctx, ownerId)
	if err != nil {
		return entities.Room{}, fmt.Errorf("failed to check active rooms: %w", err)
	}
	if exists {
		return entities.Room{}, ErrDuplicateActiveRoom
	}

	now := time.Now()
	room := entities.Room{
		Id:        uuid.NewString(),
		Code:      generateRoomCode(),
		Player1Id: ownerId,
		Status:    entities.RoomWaiting,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.RoomTTL).Unix(),
	}
	if err := m.store.CreateRoom(ctx, room); err != nil {
		return entities.Room{}, fmt.Errorf("failed to create room: %w", err)
	}
	logging.Info("room created",
		zap.String("room_id", room.Id),
		zap.String("code", room.Code),
		zap.String("owner_id", ownerId),
	)
	return room, nil
}

// JoinRoom claims a WAITING room for the joiner, moves it to PLAYING and
// creates its session with the room owner as the starting turn holder.
func (m *Manager) JoinRoom(ctx context.Context, code, joinerId string) (entities.Room, entities.Session, error) {
	room, err := m.store.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return entities.Room{}, entities.Session{}, ErrRoomNotJoinable
		}
		return entities.Room{}, entities.Session{}, fmt.Errorf("failed to get room: %w", err)
	}
	if room.Status != entities.RoomWaiting || room.Player1Id == joinerId {
		return entities.Room{}, entities.Session{}, ErrRoomNotJoinable
	}
	waiting := room

	now := time.Now()
	room.Player2Id = joinerId
	room.Status = entities.RoomPlaying
	room.StartedAt = now
	room.ExpiresAt = now.Add(m.cfg.SessionTTL).Unix()
	if err := m.store.UpdateRoom(ctx, room, entities.RoomWaiting); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return entities.Room{}, entities.Session{}, ErrRoomNotJoinable
		}
		return entities.Room{}, entities.Session{}, err
	}

	session := entities.Session{
		RoomId:      room.Id,
		Player1Id:   room.Player1Id,
		Player2Id:   joinerId,
		CurrentTurn: room.Player1Id,
		Phase:       entities.PhasePlacingShips,
		StartedAt:   now,
		Version:     1,
		ExpiresAt:   now.Add(m.cfg.SessionTTL).Unix(),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		// Revert the claim so the room stays joinable.
		if revertErr := m.store.UpdateRoom(ctx, waiting, entities.RoomPlaying); revertErr != nil {
			logging.Error("failed to revert room after session create failure",
				zap.String("room_id", room.Id),
				zap.Error(revertErr),
			)
		}
		return entities.Room{}, entities.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	logging.Info("room joined",
		zap.String("room_id", room.Id),
		zap.String("joiner_id", joinerId),
	)
	return room, session, nil
}

// PlacementResult reports an accepted fleet placement.
type PlacementResult struct {
	BothReady  bool   `json:"bothReady"`
	TurnHolder string `json:"turnHolder"`
}

// PlaceFleet validates and records a player's fleet. Once both fleets are
// present the session advances to PLAYING.
func (m *Manager) PlaceFleet(
	ctx context.Context,
	roomId, playerId string,
	fleet entities.Fleet,
) (PlacementResult, error) {
	if err := ValidateFleet(fleet); err != nil {
		return PlacementResult{}, err
	}

	session, err := m.mutateSession(ctx, roomId, func(s *entities.Session) error {
		if !s.IsParticipant(playerId) {
			return ErrNotAParticipant
		}
		if s.Phase != entities.PhasePlacingShips {
			return ErrWrongPhase
		}
		s.SetFleet(playerId, fleet)
		if s.BothFleetsPlaced() {
			s.Phase = entities.PhasePlaying
		}
		return nil
	})
	if err != nil {
		return PlacementResult{}, err
	}
	logging.Info("fleet placed",
		zap.String("room_id", roomId),
		zap.String("player_id", playerId),
		zap.Bool("both_ready", session.Phase == entities.PhasePlaying),
	)
	return PlacementResult{
		BothReady:  session.Phase == entities.PhasePlaying,
		TurnHolder: session.CurrentTurn,
	}, nil
}

// RatingChange is one player's post-match rating movement.
type RatingChange struct {
	UserId string `json:"userId"`
	Rating int    `json:"rating"`
	Delta  int    `json:"delta"`
}

type RatingChanges struct {
	Winner RatingChange `json:"winner"`
	Loser  RatingChange `json:"loser"`
}

// AttackResult carries the resolved attack plus, on game over, the match
// bookkeeping outcome. Degraded is set when the durable write did not
// complete in time and was queued for out-of-band retry.
type AttackResult struct {
	AttackOutcome
	Ratings  *RatingChanges `json:"ratings,omitempty"`
	Degraded bool           `json:"degraded,omitempty"`
}

// Attack resolves one attack for the current turn holder.
func (m *Manager) Attack(
	ctx context.Context,
	roomId, attackerId string,
	target entities.Coord,
) (AttackResult, error) {
	var outcome AttackOutcome
	session, err := m.mutateSession(ctx, roomId, func(s *entities.Session) error {
		var resolveErr error
		outcome, resolveErr = resolveAttack(s, attackerId, target, time.Now())
		return resolveErr
	})
	if err != nil {
		return AttackResult{}, err
	}

	result := AttackResult{AttackOutcome: outcome}
	if outcome.GameOver {
		ratings, degraded := m.endMatch(ctx, &session, outcome.WinnerId, entities.EndNormal)
		result.Ratings = ratings
		result.Degraded = degraded
	}
	return result, nil
}

// MatchOutcome reports a match ended by forfeit.
type MatchOutcome struct {
	RoomId   string             `json:"roomId"`
	WinnerId string             `json:"winnerId"`
	LoserId  string             `json:"loserId"`
	Reason   entities.EndReason `json:"reason"`
	Ratings  *RatingChanges     `json:"ratings,omitempty"`
	Degraded bool               `json:"degraded,omitempty"`
}

// Forfeit ends the match immediately with the other player as winner. It
// runs through the same versioned mutation path as Attack, so a forfeit
// racing a concurrent attack resolves cleanly: whichever wins the write is
// applied, the other observes WrongPhase or ConcurrentModification.
func (m *Manager) Forfeit(
	ctx context.Context,
	roomId, forfeitingPlayerId string,
	reason entities.EndReason,
) (MatchOutcome, error) {
	session, err := m.mutateSession(ctx, roomId, func(s *entities.Session) error {
		if !s.IsParticipant(forfeitingPlayerId) {
			return ErrNotAParticipant
		}
		if s.Phase == entities.PhaseFinished {
			return ErrWrongPhase
		}
		s.Phase = entities.PhaseFinished
		return nil
	})
	if err != nil {
		return MatchOutcome{}, err
	}

	winnerId := session.OpponentOf(forfeitingPlayerId)
	ratings, degraded := m.endMatch(ctx, &session, winnerId, reason)
	return MatchOutcome{
		RoomId:   roomId,
		WinnerId: winnerId,
		LoserId:  forfeitingPlayerId,
		Reason:   reason,
		Ratings:  ratings,
		Degraded: degraded,
	}, nil
}

// GetRoom returns the lobby-level room record.
func (m *Manager) GetRoom(ctx context.Context, roomId string) (entities.Room, error) {
	return m.store.GetRoom(ctx, roomId)
}

// GetSession returns the transient state of an active match.
func (m *Manager) GetSession(ctx context.Context, roomId string) (entities.Session, error) {
	return m.store.GetSession(ctx, roomId)
}

// mutateSession runs one read-modify-conditional-write cycle, retrying from
// a fresh read on version mismatch. Persistent contention surfaces as
// ErrConcurrentModification.
func (m *Manager) mutateSession(
	ctx context.Context,
	roomId string,
	mutate func(*entities.Session) error,
) (entities.Session, error) {
	for attempt := 0; attempt < m.cfg.MaxRetries; attempt++ {
		session, err := m.store.GetSession(ctx, roomId)
		if err != nil {
			return entities.Session{}, err
		}
		expected := session.Version
		if err := mutate(&session); err != nil {
			return entities.Session{}, err
		}
		session.Version = expected + 1
		session.ExpiresAt = time.Now().Add(m.cfg.SessionTTL).Unix()

		err = m.store.PutSession(ctx, session, expected)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrVersionMismatch) {
			return entities.Session{}, err
		}
		logging.Info("session write conflict",
			zap.String("room_id", roomId),
			zap.Int("attempt", attempt+1),
		)
	}
	return entities.Session{}, ErrConcurrentModification
}

// endMatch performs end-of-game bookkeeping: the room's final state, rating
// updates and the durable match record land in one atomic unit with a
// timeout. On failure the session and the PLAYING room are left untouched
// and the whole unit is queued for retry, so the decided outcome is never
// silently lost and a winner is never recorded without its ratings.
func (m *Manager) endMatch(
	ctx context.Context,
	session *entities.Session,
	winnerId string,
	reason entities.EndReason,
) (*RatingChanges, bool) {
	now := time.Now()
	loserId := session.OpponentOf(winnerId)

	changes := m.computeRatings(ctx, winnerId, loserId)
	record := entities.MatchRecord{
		RoomId:       session.RoomId,
		Player1Id:    session.Player1Id,
		Player2Id:    session.Player2Id,
		WinnerId:     winnerId,
		Reason:       reason,
		TotalMoves:   len(session.Moves),
		Duration:     int64(now.Sub(session.StartedAt).Seconds()),
		Player1Fleet: session.Player1Fleet,
		Player2Fleet: session.Player2Fleet,
		Moves:        session.Moves,
		EndedAt:      now,
	}
	ratings := []entities.UserRating{
		{UserId: winnerId, PartitionKey: "UserRatings", Rating: changes.Winner.Rating},
		{UserId: loserId, PartitionKey: "UserRatings", Rating: changes.Loser.Rating},
	}

	archiveCtx, cancel := context.WithTimeout(ctx, m.cfg.ArchiveTimeout)
	defer cancel()
	if err := m.recordFinishedMatch(archiveCtx, record, ratings); err != nil {
		logging.Error("failed to archive match, queued for retry",
			zap.String("room_id", session.RoomId),
			zap.Error(err),
		)
		m.archiveCh <- archiveJob{record: record, ratings: ratings}
		return &changes, true
	}

	if err := m.store.DeleteSession(ctx, session.RoomId); err != nil {
		logging.Error("failed to delete session",
			zap.String("room_id", session.RoomId),
			zap.Error(err),
		)
	}
	logging.Info("match ended",
		zap.String("room_id", session.RoomId),
		zap.String("winner_id", winnerId),
		zap.String("reason", string(reason)),
	)
	return &changes, false
}

func (m *Manager) computeRatings(ctx context.Context, winnerId, loserId string) RatingChanges {
	winner := m.ratingOrDefault(ctx, winnerId)
	loser := m.ratingOrDefault(ctx, loserId)
	newWinner, newLoser := utils.UpdateRatings(winner.Rating, loser.Rating, m.cfg.KFactor)
	return RatingChanges{
		Winner: RatingChange{UserId: winnerId, Rating: newWinner, Delta: newWinner - winner.Rating},
		Loser:  RatingChange{UserId: loserId, Rating: newLoser, Delta: newLoser - loser.Rating},
	}
}

func (m *Manager) ratingOrDefault(ctx context.Context, userId string) entities.UserRating {
	rating, err := m.store.GetUserRating(ctx, userId)
	if err != nil {
		logging.Error("failed to get rating, using default",
			zap.String("user_id", userId),
			zap.Error(err),
		)
		return entities.UserRating{UserId: userId, Rating: utils.DefaultRating}
	}
	return rating
}

// recordFinishedMatch writes the atomic end-of-match unit: the FINISHED
// room with its winner, the match record and both ratings.
func (m *Manager) recordFinishedMatch(
	ctx context.Context,
	record entities.MatchRecord,
	ratings []entities.UserRating,
) error {
	room, err := m.store.GetRoom(ctx, record.RoomId)
	if err != nil {
		return err
	}
	room.Status = entities.RoomFinished
	room.WinnerId = record.WinnerId
	room.EndedAt = record.EndedAt
	return m.store.RecordMatch(ctx, room, record, ratings)
}

func (m *Manager) archiveWorker() {
	defer m.wg.Done()
	for job := range m.archiveCh {
		var err error
		for attempt := 0; attempt < 5; attempt++ {
			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ArchiveTimeout)
			err = m.recordFinishedMatch(ctx, job.record, job.ratings)
			cancel()
			if err == nil {
				break
			}
			time.Sleep(time.Duration(attempt+1) * time.Second)
		}
		if err != nil {
			logging.Error("abandoning match archive",
				zap.String("room_id", job.record.RoomId),
				zap.Error(err),
			)
			continue
		}
		if err := m.store.DeleteSession(context.Background(), job.record.RoomId); err != nil {
			logging.Error("failed to delete session after archive retry",
				zap.String("room_id", job.record.RoomId),
				zap.Error(err),
			)
		}
	}
}

func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(code)
}
