package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

type matchEndedMessage struct {
	RoomId   string             `json:"roomId"`
	WinnerId string             `json:"winnerId"`
	LoserId  string             `json:"loserId"`
	Reason   entities.EndReason `json:"reason"`
}

// PublishMatchEnded notifies downstream consumers that a match concluded.
func (client *Client) PublishMatchEnded(
	ctx context.Context,
	roomId, winnerId, loserId string,
	reason entities.EndReason,
) error {
	message, err := json.Marshal(matchEndedMessage{
		RoomId:   roomId,
		WinnerId: winnerId,
		LoserId:  loserId,
		Reason:   reason,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	_, err = client.sns.Publish(ctx, &sns.PublishInput{
		Message:  aws.String(string(message)),
		TopicArn: aws.String(client.cfg.MatchEndedTopicArn),
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}
