package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/seabattle-vn/slbattle/internal/aws/storage"
	"github.com/seabattle-vn/slbattle/internal/domains/dtos"
	"github.com/seabattle-vn/slbattle/pkg/logging"
	"go.uber.org/zap"
)

const defaultLimit = 50

var storageClient *storage.Client

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient = storage.NewClient(
		dynamodb.NewFromConfig(cfg),
		storage.Config{
			UserRatingsTableName: aws.String(envOr("USER_RATINGS_TABLE_NAME", "UserRatings")),
		},
	)
}

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	startKey, limit := extractScanParameters(event.QueryStringParameters)
	ratings, lastEvaluatedKey, err := storageClient.FetchUserRatings(ctx, startKey, limit)
	if err != nil {
		logging.Error("Failed to list user ratings", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}

	ratingListResp := dtos.UserRatingListResponseFromEntities(ratings)
	if lastEvaluatedKey != nil {
		if rating, ok := lastEvaluatedKey["Rating"].(*types.AttributeValueMemberN); ok {
			ratingListResp.NextPageToken.Rating = rating.Value
		}
		if userId, ok := lastEvaluatedKey["UserId"].(*types.AttributeValueMemberS); ok {
			ratingListResp.NextPageToken.UserId = userId.Value
		}
	}

	ratingListJson, err := json.Marshal(ratingListResp)
	if err != nil {
		logging.Error("Failed to list user ratings", zap.Error(err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: string(ratingListJson)}, nil
}

func extractScanParameters(params map[string]string) (map[string]types.AttributeValue, int32) {
	limit := int32(defaultLimit)
	if v, ok := params["limit"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 32); err == nil && parsed > 0 {
			limit = int32(parsed)
		}
	}
	var startKey map[string]types.AttributeValue
	if rating, ok := params["startRating"]; ok {
		if userId, ok := params["startUserId"]; ok {
			startKey = map[string]types.AttributeValue{
				"PartitionKey": &types.AttributeValueMemberS{Value: "UserRatings"},
				"Rating":       &types.AttributeValueMemberN{Value: rating},
				"UserId":       &types.AttributeValueMemberS{Value: userId},
			}
		}
	}
	return startKey, limit
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	lambda.Start(handler)
}
