package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1200, 1200), 1e-9)

	// A 400 point gap gives the stronger player roughly 10:1 odds.
	assert.InDelta(t, 1.0/1.1, ExpectedScore(1600, 1200), 1e-9)
	assert.InDelta(t, 0.1/1.1, ExpectedScore(1200, 1600), 1e-9)

	// Expectations for the two sides always sum to one.
	assert.InDelta(t, 1.0, ExpectedScore(1850, 1430)+ExpectedScore(1430, 1850), 1e-9)
}

func TestUpdateRatings(t *testing.T) {
	winner, loser := UpdateRatings(1200, 1200, DefaultKFactor)
	assert.Equal(t, 1216, winner)
	assert.Equal(t, 1184, loser)

	// Beating a much stronger player moves both ratings further.
	winner, loser = UpdateRatings(1200, 1600, DefaultKFactor)
	assert.Equal(t, 1229, winner)
	assert.Equal(t, 1571, loser)

	// The favorite gains little from an expected win.
	winner, loser = UpdateRatings(1600, 1200, DefaultKFactor)
	assert.Equal(t, 1603, winner)
	assert.Equal(t, 1197, loser)
}
