package entities

// UserRating is one player's current Elo rating. PartitionKey is a fixed
// value so the RatingIndex can order all players by rating.
type UserRating struct {
	UserId       string `dynamodbav:"UserId" json:"userId"`
	PartitionKey string `dynamodbav:"PartitionKey" json:"-"`
	Rating       int    `dynamodbav:"Rating" json:"rating"`
}
