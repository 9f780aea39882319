package entities

import "time"

type Phase string

const (
	PhasePlacingShips Phase = "PLACING_SHIPS"
	PhasePlaying      Phase = "PLAYING"
	PhaseFinished     Phase = "FINISHED"
)

type MoveResult string

const (
	MoveHit  MoveResult = "HIT"
	MoveMiss MoveResult = "MISS"
)

// Move is one resolved attack, immutable once appended. The move log,
// concatenated, is the complete deterministic replay of the match.
type Move struct {
	PlayerId  string     `dynamodbav:"PlayerId" json:"playerId"`
	Target    Coord      `dynamodbav:"Target" json:"target"`
	Result    MoveResult `dynamodbav:"Result" json:"result"`
	SunkShip  string     `dynamodbav:"SunkShip,omitempty" json:"sunkShip,omitempty"`
	CreatedAt time.Time  `dynamodbav:"CreatedAt" json:"createdAt"`
}

// Session is the authoritative transient state of one active match. It lives
// only in the session store while the match runs and is discarded once the
// match record is durably written. Version increases on every accepted
// mutation and is the sole lost-update detector.
type Session struct {
	RoomId       string    `dynamodbav:"RoomId" json:"roomId"`
	Player1Id    string    `dynamodbav:"Player1Id" json:"player1Id"`
	Player2Id    string    `dynamodbav:"Player2Id" json:"player2Id"`
	CurrentTurn  string    `dynamodbav:"CurrentTurn" json:"currentTurn"`
	Player1Fleet Fleet     `dynamodbav:"Player1Fleet,omitempty" json:"player1Fleet,omitempty"`
	Player2Fleet Fleet     `dynamodbav:"Player2Fleet,omitempty" json:"player2Fleet,omitempty"`
	Player1Board Board     `dynamodbav:"Player1Board" json:"player1Board"`
	Player2Board Board     `dynamodbav:"Player2Board" json:"player2Board"`
	Moves        []Move    `dynamodbav:"Moves" json:"moves"`
	Phase        Phase     `dynamodbav:"Phase" json:"phase"`
	StartedAt    time.Time `dynamodbav:"StartedAt" json:"startedAt"`
	Version      int64     `dynamodbav:"Version" json:"version"`
	ExpiresAt    int64     `dynamodbav:"ExpiresAt" json:"expiresAt"`
}

// IsParticipant reports whether the given player belongs to the session.
func (s *Session) IsParticipant(playerId string) bool {
	return playerId == s.Player1Id || playerId == s.Player2Id
}

// OpponentOf returns the other participant.
func (s *Session) OpponentOf(playerId string) string {
	if playerId == s.Player1Id {
		return s.Player2Id
	}
	return s.Player1Id
}

// FleetOf returns the fleet committed by the given player, nil if not placed.
func (s *Session) FleetOf(playerId string) Fleet {
	if playerId == s.Player1Id {
		return s.Player1Fleet
	}
	return s.Player2Fleet
}

// SetFleet records the given player's fleet.
func (s *Session) SetFleet(playerId string, fleet Fleet) {
	if playerId == s.Player1Id {
		s.Player1Fleet = fleet
	} else {
		s.Player2Fleet = fleet
	}
}

// BoardOf returns the board recording attacks made against the given player.
func (s *Session) BoardOf(playerId string) *Board {
	if playerId == s.Player1Id {
		return &s.Player1Board
	}
	return &s.Player2Board
}

// Clone returns a deep copy detached from the original's fleets and move
// log, so mutating one cannot leak into the other.
func (s Session) Clone() Session {
	out := s
	out.Player1Fleet = s.Player1Fleet.Clone()
	out.Player2Fleet = s.Player2Fleet.Clone()
	out.Moves = append([]Move(nil), s.Moves...)
	return out
}

// BothFleetsPlaced reports whether both players have committed a fleet.
func (s *Session) BothFleetsPlaced() bool {
	return s.Player1Fleet != nil && s.Player2Fleet != nil
}
