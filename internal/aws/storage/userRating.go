package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/seabattle-vn/slbattle/internal/domains/entities"
	"github.com/seabattle-vn/slbattle/pkg/utils"
)

func (client *Client) GetUserRating(ctx context.Context, userId string) (entities.UserRating, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.UserRatingsTableName,
		Key: map[string]types.AttributeValue{
			"UserId": &types.AttributeValueMemberS{Value: userId},
		},
	})
	if err != nil {
		return entities.UserRating{}, err
	}
	if output.Item == nil {
		return entities.UserRating{
			UserId:       userId,
			PartitionKey: "UserRatings",
			Rating:       utils.DefaultRating,
		}, nil
	}
	var rating entities.UserRating
	if err := attributevalue.UnmarshalMap(output.Item, &rating); err != nil {
		return entities.UserRating{}, err
	}
	return rating, nil
}

// FetchUserRatings lists players ordered by rating, highest first.
func (client *Client) FetchUserRatings(
	ctx context.Context,
	lastKey map[string]types.AttributeValue,
	limit int32,
) (
	[]entities.UserRating,
	map[string]types.AttributeValue,
	error,
) {
	input := &dynamodb.QueryInput{
		TableName:              client.cfg.UserRatingsTableName,
		IndexName:              aws.String("RatingIndex"),
		KeyConditionExpression: aws.String("PartitionKey = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "UserRatings"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if lastKey != nil {
		input.ExclusiveStartKey = lastKey
	}
	output, err := client.dynamodb.Query(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	var ratings []entities.UserRating
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &ratings); err != nil {
		return nil, nil, err
	}
	return ratings, output.LastEvaluatedKey, nil
}
