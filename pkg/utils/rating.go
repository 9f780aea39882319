package utils

import "math"

// DefaultKFactor is the Elo sensitivity constant applied to every match.
const DefaultKFactor = 32

// DefaultRating is assigned to players with no recorded rating.
const DefaultRating = 1200

// ExpectedScore returns the expected score of the first player against the
// second under the standard Elo model.
func ExpectedScore(r1, r2 float64) float64 {
	return 1 / (1 + math.Pow(10, (r2-r1)/400))
}

// UpdateRatings computes post-match Elo ratings for the winner and loser,
// rounded to the nearest integer.
func UpdateRatings(winner, loser int, k float64) (newWinner, newLoser int) {
	rw := float64(winner)
	rl := float64(loser)
	expectedWinner := ExpectedScore(rw, rl)
	expectedLoser := ExpectedScore(rl, rw)
	newWinner = int(math.Round(rw + k*(1-expectedWinner)))
	newLoser = int(math.Round(rl + k*(0-expectedLoser)))
	return newWinner, newLoser
}
