package dtos

import "github.com/seabattle-vn/slbattle/internal/domains/entities"

type UserRatingResponse struct {
	UserId string `json:"userId"`
	Rating int    `json:"rating"`
}

type NextUserRatingPageToken struct {
	Rating string `json:"rating,omitempty"`
	UserId string `json:"userId,omitempty"`
}

type UserRatingListResponse struct {
	Ratings       []UserRatingResponse    `json:"ratings"`
	NextPageToken NextUserRatingPageToken `json:"nextPageToken,omitempty"`
}

func UserRatingListResponseFromEntities(ratings []entities.UserRating) UserRatingListResponse {
	resp := UserRatingListResponse{
		Ratings: make([]UserRatingResponse, 0, len(ratings)),
	}
	for _, rating := range ratings {
		resp.Ratings = append(resp.Ratings, UserRatingResponse{
			UserId: rating.UserId,
			Rating: rating.Rating,
		})
	}
	return resp
}
