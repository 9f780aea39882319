package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

var ErrMatchRecordNotFound = fmt.Errorf("match record not found")

// RecordMatch writes the finished room, the match record and both updated
// ratings in a single transaction, so a crash cannot record a winner
// without its ratings or vice versa. The room put is conditional on the
// room still being PLAYING; the whole transaction fails when it is not.
func (client *Client) RecordMatch(
	ctx context.Context,
	room entities.Room,
	record entities.MatchRecord,
	ratings []entities.UserRating,
) error {
	roomAv, err := attributevalue.MarshalMap(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room map: %w", err)
	}
	recordAv, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record map: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           client.cfg.RoomsTableName,
				Item:                roomAv,
				ConditionExpression: aws.String("#status = :playing"),
				ExpressionAttributeNames: map[string]string{
					"#status": "Status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":playing": &types.AttributeValueMemberS{
						Value: string(entities.RoomPlaying),
					},
				},
			},
		},
		{
			Put: &types.Put{
				TableName: client.cfg.MatchRecordsTableName,
				Item:      recordAv,
			},
		},
	}
	for _, rating := range ratings {
		ratingAv, err := attributevalue.MarshalMap(rating)
		if err != nil {
			return fmt.Errorf("failed to marshal user rating map: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: client.cfg.UserRatingsTableName,
				Item:      ratingAv,
			},
		})
	}

	_, err = client.dynamodb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return fmt.Errorf("failed to record match: %w", err)
	}
	return nil
}

func (client *Client) GetMatchRecord(ctx context.Context, roomId string) (entities.MatchRecord, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.MatchRecordsTableName,
		Key: map[string]types.AttributeValue{
			"RoomId": &types.AttributeValueMemberS{Value: roomId},
		},
	})
	if err != nil {
		return entities.MatchRecord{}, err
	}
	if output.Item == nil {
		return entities.MatchRecord{}, ErrMatchRecordNotFound
	}
	var record entities.MatchRecord
	if err := attributevalue.UnmarshalMap(output.Item, &record); err != nil {
		return entities.MatchRecord{}, err
	}
	return record, nil
}
