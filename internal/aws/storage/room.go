package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

func (client *Client) CreateRoom(ctx context.Context, room entities.Room) error {
	av, err := attributevalue.MarshalMap(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.RoomsTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(Id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put room: %w", err)
	}
	return nil
}

func (client *Client) GetRoom(ctx context.Context, roomId string) (entities.Room, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.RoomsTableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{Value: roomId},
		},
	})
	if err != nil {
		return entities.Room{}, err
	}
	if output.Item == nil {
		return entities.Room{}, battle.ErrRoomNotFound
	}
	var room entities.Room
	if err := attributevalue.UnmarshalMap(output.Item, &room); err != nil {
		return entities.Room{}, err
	}
	return room, nil
}

func (client *Client) GetRoomByCode(ctx context.Context, code string) (entities.Room, error) {
	output, err := client.dynamodb.Query(ctx, &dynamodb.QueryInput{
		TableName:              client.cfg.RoomsTableName,
		IndexName:              aws.String("CodeIndex"),
		KeyConditionExpression: aws.String("Code = :code"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return entities.Room{}, err
	}
	if len(output.Items) == 0 {
		return entities.Room{}, battle.ErrRoomNotFound
	}
	var room entities.Room
	if err := attributevalue.UnmarshalMap(output.Items[0], &room); err != nil {
		return entities.Room{}, err
	}
	return room, nil
}

// UpdateRoom rewrites the room conditionally on its stored status, so a
// WAITING room can only be claimed by one joiner.
func (client *Client) UpdateRoom(
	ctx context.Context,
	room entities.Room,
	expect entities.RoomStatus,
) error {
	av, err := attributevalue.MarshalMap(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.RoomsTableName,
		Item:                av,
		ConditionExpression: aws.String("#status = :expect"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expect": &types.AttributeValueMemberS{Value: string(expect)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return battle.ErrRoomNotJoinable
		}
		return fmt.Errorf("failed to update room: %w", err)
	}
	return nil
}

func (client *Client) ActiveRoomExists(ctx context.Context, ownerId string) (bool, error) {
	output, err := client.dynamodb.Query(ctx, &dynamodb.QueryInput{
		TableName:              client.cfg.RoomsTableName,
		IndexName:              aws.String("OwnerIndex"),
		KeyConditionExpression: aws.String("Player1Id = :ownerId"),
		FilterExpression:       aws.String("#status <> :finished"),
		ExpressionAttributeNames: map[string]string{
			"#status": "Status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ownerId":  &types.AttributeValueMemberS{Value: ownerId},
			":finished": &types.AttributeValueMemberS{Value: string(entities.RoomFinished)},
		},
	})
	if err != nil {
		return false, err
	}
	return len(output.Items) > 0, nil
}
