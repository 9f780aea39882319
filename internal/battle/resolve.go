package battle

import (
	"time"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

// AttackOutcome is the result of one resolved attack. A sunk ship is always
// also a hit; the two flags are independent.
type AttackOutcome struct {
	AttackerId string         `json:"attackerId"`
	Target     entities.Coord `json:"coord"`
	Hit        bool           `json:"hit"`
	SunkShip   string         `json:"sunkShip,omitempty"`
	GameOver   bool           `json:"gameOver"`
	WinnerId   string         `json:"winnerId,omitempty"`
}

// resolveAttack applies one attack to the session in place. It enforces the
// turn state machine: phase gate, turn gate, then the idempotency gate on
// the defender board, so a duplicate or out-of-order client event degrades
// to a clean rejection instead of a second resolution.
func resolveAttack(
	session *entities.Session,
	attackerId string,
	target entities.Coord,
	now time.Time,
) (AttackOutcome, error) {
	outcome := AttackOutcome{AttackerId: attackerId, Target: target}

	if !target.InBounds() {
		return outcome, ErrInvalidCoordinate
	}
	if !session.IsParticipant(attackerId) {
		return outcome, ErrNotAParticipant
	}
	if session.Phase != entities.PhasePlaying {
		return outcome, ErrWrongPhase
	}
	if session.CurrentTurn != attackerId {
		return outcome, ErrNotYourTurn
	}

	defenderId := session.OpponentOf(attackerId)
	board := session.BoardOf(defenderId)
	if board.At(target) != entities.CellEmpty {
		return outcome, ErrCellAlreadyAttacked
	}

	defenderFleet := session.FleetOf(defenderId)
	if ship, cellIndex := defenderFleet.ShipAt(target); ship != nil {
		outcome.Hit = true
		ship.RegisterHit(cellIndex)
		if ship.IsSunk() {
			outcome.SunkShip = ship.Name
		}
	}

	result := entities.MoveMiss
	cell := entities.CellMiss
	if outcome.Hit {
		result = entities.MoveHit
		cell = entities.CellHit
	}
	board.Mark(target, cell)
	session.Moves = append(session.Moves, entities.Move{
		PlayerId:  attackerId,
		Target:    target,
		Result:    result,
		SunkShip:  outcome.SunkShip,
		CreatedAt: now,
	})

	if defenderFleet.AllSunk() {
		outcome.GameOver = true
		outcome.WinnerId = attackerId
		session.Phase = entities.PhaseFinished
	} else {
		session.CurrentTurn = defenderId
	}
	return outcome, nil
}
