package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

// Extra attempts the gateway makes on top of the manager's internal retry
// budget before surfacing a concurrency failure to the client.
const conflictRetries = 2

func (s *server) handlePlayerConnect(c *client) {
	s.hub.register(c)
	logging.Info("player connected", zap.String("player_id", c.playerId))
	s.broadcastPlayerList()
}

// handlePlayerDisconnect forfeits the player's active match, if any, before
// rebroadcasting presence. A player with another live connection is not
// treated as gone.
func (s *server) handlePlayerDisconnect(c *client) {
	roomId, lastConn := s.hub.unregister(c)
	if !lastConn {
		return
	}
	logging.Info("player disconnected", zap.String("player_id", c.playerId))

	if roomId != "" {
		ctx := context.Background()
		session, err := s.manager.GetSession(ctx, roomId)
		if err == nil && session.Phase == entities.PhasePlaying {
			outcome, err := s.manager.Forfeit(ctx, roomId, c.playerId, entities.EndDisconnect)
			if err != nil {
				logging.Error("disconnect forfeit failed",
					zap.String("room_id", roomId),
					zap.String("player_id", c.playerId),
					zap.Error(err),
				)
			} else {
				s.finishMatch(roomId, outcome)
			}
		}
	}
	s.broadcastPlayerList()
}

func (s *server) handleMessage(c *client, p payload) {
	switch p.Type {
	case cmdCreateRoom:
		s.handleCreateRoom(c)
	case cmdJoinRoom:
		var cmd joinRoomCommand
		if decode(c, p.Data, &cmd) {
			s.handleJoinRoom(c, cmd.Code)
		}
	case cmdPlaceFleet:
		var cmd placeFleetCommand
		if decode(c, p.Data, &cmd) {
			s.handlePlaceFleet(c, cmd)
		}
	case cmdAttack:
		var cmd attackCommand
		if decode(c, p.Data, &cmd) {
			s.handleAttack(c, cmd)
		}
	case cmdSurrender:
		var cmd surrenderCommand
		if decode(c, p.Data, &cmd) {
			s.handleSurrender(c, cmd.RoomId)
		}
	case cmdChat:
		var cmd chatCommand
		if decode(c, p.Data, &cmd) {
			s.handleChat(c, cmd)
		}
	case cmdChallenge:
		var cmd challengeCommand
		if decode(c, p.Data, &cmd) {
			s.handleChallenge(c, cmd.TargetId)
		}
	case cmdChallengeResponse:
		var cmd challengeResponseCommand
		if decode(c, p.Data, &cmd) {
			s.handleChallengeResponse(c, cmd)
		}
	default:
		logging.Info("invalid payload type", zap.String("type", p.Type))
	}
}

func (s *server) handleCreateRoom(c *client) {
	room, err := s.manager.CreateRoom(context.Background(), c.playerId)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.joinRoom(c.playerId, room.Id)
	c.writeJson(event{Type: evtRoomCreated, Data: room})
}

func (s *server) handleJoinRoom(c *client, code string) {
	room, session, err := s.manager.JoinRoom(context.Background(), code, c.playerId)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.joinRoom(room.Player1Id, room.Id)
	s.hub.joinRoom(c.playerId, room.Id)
	s.hub.broadcastRoom(room.Id, event{Type: evtRoomJoined, Data: struct {
		Room        entities.Room `json:"room"`
		CurrentTurn string        `json:"currentTurn"`
	}{room, session.CurrentTurn}})
}

func (s *server) handlePlaceFleet(c *client, cmd placeFleetCommand) {
	var result battle.PlacementResult
	err := s.withConflictRetry(func() error {
		var placeErr error
		result, placeErr = s.manager.PlaceFleet(
			context.Background(), cmd.RoomId, c.playerId, cmd.Fleet)
		return placeErr
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.broadcastRoom(cmd.RoomId, event{
		Type: evtShipsPlaced,
		Data: shipsPlacedEvent{RoomId: cmd.RoomId, PlayerId: c.playerId},
	})
	if result.BothReady {
		s.hub.broadcastRoom(cmd.RoomId, event{
			Type: evtBothReady,
			Data: bothReadyEvent{RoomId: cmd.RoomId, TurnHolder: result.TurnHolder},
		})
	}
}

func (s *server) handleAttack(c *client, cmd attackCommand) {
	var result battle.AttackResult
	err := s.withConflictRetry(func() error {
		var attackErr error
		result, attackErr = s.manager.Attack(
			context.Background(), cmd.RoomId, c.playerId,
			entities.Coord{X: cmd.X, Y: cmd.Y})
		return attackErr
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.broadcastRoom(cmd.RoomId, event{Type: evtAttackResult, Data: result.AttackOutcome})
	if result.GameOver {
		s.finishMatch(cmd.RoomId, battle.MatchOutcome{
			RoomId:   cmd.RoomId,
			WinnerId: result.WinnerId,
			LoserId:  result.Ratings.Loser.UserId,
			Reason:   entities.EndNormal,
			Ratings:  result.Ratings,
			Degraded: result.Degraded,
		})
	}
}

func (s *server) handleSurrender(c *client, roomId string) {
	outcome, err := s.manager.Forfeit(
		context.Background(), roomId, c.playerId, entities.EndSurrender)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.finishMatch(roomId, outcome)
}

// handleChat relays the message to the room unvalidated.
func (s *server) handleChat(c *client, cmd chatCommand) {
	s.hub.broadcastRoom(cmd.RoomId, event{Type: evtChatMessage, Data: chatMessageEvent{
		RoomId:    cmd.RoomId,
		PlayerId:  c.playerId,
		Message:   cmd.Message,
		CreatedAt: time.Now(),
	}})
}

func (s *server) handleChallenge(c *client, targetId string) {
	delivered := s.hub.sendToPlayer(targetId, event{
		Type: evtChallengeReceived,
		Data: map[string]string{"challengerId": c.playerId},
	})
	if !delivered {
		c.writeJson(event{Type: evtError, Data: errorEvent{
			Code:    "PLAYER_OFFLINE",
			Message: "this player is not online",
		}})
	}
}

// handleChallengeResponse creates and joins a room for the pair when the
// challenge is accepted.
func (s *server) handleChallengeResponse(c *client, cmd challengeResponseCommand) {
	if !cmd.Accepted {
		s.hub.sendToPlayer(cmd.ChallengerId, event{
			Type: evtChallengeDeclined,
			Data: map[string]string{"playerId": c.playerId},
		})
		return
	}

	ctx := context.Background()
	room, err := s.manager.CreateRoom(ctx, cmd.ChallengerId)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.hub.joinRoom(cmd.ChallengerId, room.Id)
	s.handleJoinRoom(c, room.Code)
}

// finishMatch broadcasts the conclusion, releases the room grouping and
// pushes the downstream notification.
func (s *server) finishMatch(roomId string, outcome battle.MatchOutcome) {
	s.hub.broadcastRoom(roomId, event{Type: evtMatchEnded, Data: matchEndedEvent{
		RoomId:   roomId,
		WinnerId: outcome.WinnerId,
		Reason:   outcome.Reason,
		Ratings:  outcome.Ratings,
		Degraded: outcome.Degraded,
	}})
	s.hub.clearRoom(roomId)
	s.broadcastPlayerList()

	if s.notifier != nil {
		err := s.notifier.PublishMatchEnded(
			context.Background(), roomId,
			outcome.WinnerId, outcome.LoserId, outcome.Reason)
		if err != nil {
			logging.Error("failed to publish match ended",
				zap.String("room_id", roomId),
				zap.Error(err),
			)
		}
	}
}

func (s *server) broadcastPlayerList() {
	s.hub.broadcastAll(event{
		Type: evtPlayerList,
		Data: playerListEvent{Players: s.hub.onlinePlayers()},
	})
}

// withConflictRetry resubmits the operation a bounded number of times when
// it loses to concurrent modification.
func (s *server) withConflictRetry(op func() error) error {
	err := op()
	for attempt := 0; attempt < conflictRetries && battle.Retryable(err); attempt++ {
		err = op()
	}
	return err
}

func (s *server) writeError(c *client, err error) {
	status := battle.StatusOf(err)
	c.writeJson(event{Type: evtError, Data: errorEvent{
		Code:      status,
		Message:   humanMessage(err),
		Retryable: battle.Retryable(err),
	}})
}

// humanMessage distinguishes "your input was invalid" from "try again" from
// "this match no longer exists".
func humanMessage(err error) string {
	switch {
	case battle.Retryable(err):
		return "temporary conflict, try again"
	case battle.StatusOf(err) == battle.ErrStatusRoomNotFound,
		battle.StatusOf(err) == battle.ErrStatusSessionNotFound:
		return "this match no longer exists"
	case battle.StatusOf(err) == battle.ErrStatusInternal:
		return "internal error, try again later"
	default:
		return "your input was invalid: " + err.Error()
	}
}

func decode(c *client, data json.RawMessage, out interface{}) bool {
	if err := json.Unmarshal(data, out); err != nil {
		c.writeJson(event{Type: evtError, Data: errorEvent{
			Code:    "MALFORMED_PAYLOAD",
			Message: "your input was invalid: malformed payload",
		}})
		return false
	}
	return true
}
