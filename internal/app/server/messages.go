package server

import (
	"encoding/json"
	"time"

	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

type payload struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
}

type event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Inbound command types.
const (
	cmdCreateRoom        = "create_room"
	cmdJoinRoom          = "join_room"
	cmdPlaceFleet        = "place_fleet"
	cmdAttack            = "attack"
	cmdSurrender         = "surrender"
	cmdChat              = "chat"
	cmdChallenge         = "challenge"
	cmdChallengeResponse = "challenge_response"
)

// Outbound event types.
const (
	evtRoomCreated       = "room_created"
	evtRoomJoined        = "room_joined"
	evtShipsPlaced       = "ships_placed"
	evtBothReady         = "both_ready"
	evtAttackResult      = "attack_result"
	evtMatchEnded        = "match_ended"
	evtChatMessage       = "chat_message"
	evtPlayerList        = "player_list"
	evtChallengeReceived = "challenge_received"
	evtChallengeDeclined = "challenge_declined"
	evtError             = "error"
)

type joinRoomCommand struct {
	Code string `json:"code"`
}

type placeFleetCommand struct {
	RoomId string         `json:"roomId"`
	Fleet  entities.Fleet `json:"fleet"`
}

type attackCommand struct {
	RoomId string `json:"roomId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type surrenderCommand struct {
	RoomId string `json:"roomId"`
}

type chatCommand struct {
	RoomId  string `json:"roomId"`
	Message string `json:"message"`
}

type challengeCommand struct {
	TargetId string `json:"targetId"`
}

type challengeResponseCommand struct {
	ChallengerId string `json:"challengerId"`
	Accepted     bool   `json:"accepted"`
}

type shipsPlacedEvent struct {
	RoomId   string `json:"roomId"`
	PlayerId string `json:"playerId"`
}

type bothReadyEvent struct {
	RoomId     string `json:"roomId"`
	TurnHolder string `json:"turnHolder"`
}

type matchEndedEvent struct {
	RoomId   string                `json:"roomId"`
	WinnerId string                `json:"winnerId"`
	Reason   entities.EndReason    `json:"reason"`
	Ratings  *battle.RatingChanges `json:"ratings,omitempty"`
	Degraded bool                  `json:"degraded,omitempty"`
}

type chatMessageEvent struct {
	RoomId    string    `json:"roomId"`
	PlayerId  string    `json:"playerId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type playerListEvent struct {
	Players []string `json:"players"`
}

type errorEvent struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
