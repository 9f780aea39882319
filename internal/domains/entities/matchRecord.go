package entities

import "time"

type EndReason string

const (
	EndNormal     EndReason = "NORMAL"
	EndSurrender  EndReason = "SURRENDER"
	EndDisconnect EndReason = "DISCONNECT"
)

// MatchRecord is the durable summary of one finished match, written exactly
// once when a session reaches FINISHED. The history and replay read paths
// depend on this shape staying stable.
type MatchRecord struct {
	RoomId       string    `dynamodbav:"RoomId" json:"roomId"`
	Player1Id    string    `dynamodbav:"Player1Id" json:"player1Id"`
	Player2Id    string    `dynamodbav:"Player2Id" json:"player2Id"`
	WinnerId     string    `dynamodbav:"WinnerId" json:"winnerId"`
	Reason       EndReason `dynamodbav:"Reason" json:"reason"`
	TotalMoves   int       `dynamodbav:"TotalMoves" json:"totalMoves"`
	Duration     int64     `dynamodbav:"Duration" json:"durationSeconds"`
	Player1Fleet Fleet     `dynamodbav:"Player1Fleet" json:"player1Fleet"`
	Player2Fleet Fleet     `dynamodbav:"Player2Fleet" json:"player2Fleet"`
	Moves        []Move    `dynamodbav:"Moves" json:"moves"`
	EndedAt      time.Time `dynamodbav:"EndedAt" json:"endedAt"`
}
