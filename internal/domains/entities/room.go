package entities

import "time"

type RoomStatus string

const (
	RoomWaiting  RoomStatus = "WAITING"
	RoomPlaying  RoomStatus = "PLAYING"
	RoomFinished RoomStatus = "FINISHED"
)

// Room is the lobby-level pairing of two players, independent of the
// in-progress game data held by the Session.
type Room struct {
	Id        string     `dynamodbav:"Id" json:"id"`
	Code      string     `dynamodbav:"Code" json:"code"`
	Player1Id string     `dynamodbav:"Player1Id" json:"player1Id"`
	Player2Id string     `dynamodbav:"Player2Id,omitempty" json:"player2Id,omitempty"`
	Status    RoomStatus `dynamodbav:"Status" json:"status"`
	WinnerId  string     `dynamodbav:"WinnerId,omitempty" json:"winnerId,omitempty"`
	CreatedAt time.Time  `dynamodbav:"CreatedAt" json:"createdAt"`
	StartedAt time.Time  `dynamodbav:"StartedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt   time.Time  `dynamodbav:"EndedAt,omitempty" json:"endedAt,omitempty"`
	ExpiresAt int64      `dynamodbav:"ExpiresAt" json:"expiresAt"`
}
