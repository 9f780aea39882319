package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/seabattle-vn/slbattle/internal/battle"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

func (client *Client) CreateSession(ctx context.Context, session entities.Session) error {
	av, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.SessionsTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(RoomId)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

func (client *Client) GetSession(ctx context.Context, roomId string) (entities.Session, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.SessionsTableName,
		Key: map[string]types.AttributeValue{
			"RoomId": &types.AttributeValueMemberS{Value: roomId},
		},
	})
	if err != nil {
		return entities.Session{}, err
	}
	if output.Item == nil {
		return entities.Session{}, battle.ErrSessionNotFound
	}
	var session entities.Session
	if err := attributevalue.UnmarshalMap(output.Item, &session); err != nil {
		return entities.Session{}, err
	}
	return session, nil
}

// PutSession rewrites the session conditionally on the stored version, the
// lost-update guard for the read-modify-write cycle.
func (client *Client) PutSession(
	ctx context.Context,
	session entities.Session,
	expectedVersion int64,
) error {
	av, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.SessionsTableName,
		Item:                av,
		ConditionExpression: aws.String("Version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{
				Value: strconv.FormatInt(expectedVersion, 10),
			},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return battle.ErrVersionMismatch
		}
		return fmt.Errorf("failed to put session: %w", err)
	}
	return nil
}

func (client *Client) DeleteSession(ctx context.Context, roomId string) error {
	_, err := client.dynamodb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: client.cfg.SessionsTableName,
		Key: map[string]types.AttributeValue{
			"RoomId": &types.AttributeValueMemberS{Value: roomId},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
