package dtos

import (
	"time"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

type MatchRecordResponse struct {
	RoomId       string             `json:"roomId"`
	Player1Id    string             `json:"player1Id"`
	Player2Id    string             `json:"player2Id"`
	WinnerId     string             `json:"winnerId"`
	Reason       entities.EndReason `json:"reason"`
	TotalMoves   int                `json:"totalMoves"`
	Duration     int64              `json:"durationSeconds"`
	Player1Fleet entities.Fleet     `json:"player1Fleet"`
	Player2Fleet entities.Fleet     `json:"player2Fleet"`
	Moves        []entities.Move    `json:"moves"`
	EndedAt      time.Time          `json:"endedAt"`
}

func MatchRecordResponseFromEntity(record entities.MatchRecord) MatchRecordResponse {
	return MatchRecordResponse{
		RoomId:       record.RoomId,
		Player1Id:    record.Player1Id,
		Player2Id:    record.Player2Id,
		WinnerId:     record.WinnerId,
		Reason:       record.Reason,
		TotalMoves:   record.TotalMoves,
		Duration:     record.Duration,
		Player1Fleet: record.Player1Fleet,
		Player2Fleet: record.Player2Fleet,
		Moves:        record.Moves,
		EndedAt:      record.EndedAt,
	}
}
