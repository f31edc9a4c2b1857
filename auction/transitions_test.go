package auction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gavel/auction"
	"gavel/models"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.Status{
		{models.StatusScheduled, models.StatusActive},
		{models.StatusScheduled, models.StatusCancelled},
		{models.StatusActive, models.StatusPaused},
		{models.StatusActive, models.StatusEnded},
		{models.StatusActive, models.StatusCancelled},
		{models.StatusPaused, models.StatusActive},
		{models.StatusPaused, models.StatusCancelled},
	}
	for _, edge := range allowed {
		assert.True(t, auction.CanTransition(edge[0], edge[1]), "%s -> %s", edge[0], edge[1])
	}

	statuses := []models.Status{
		models.StatusScheduled, models.StatusActive, models.StatusPaused,
		models.StatusEnded, models.StatusCancelled, models.StatusSettled,
	}
	isAllowed := func(from, to models.Status) bool {
		for _, edge := range allowed {
			if edge[0] == from && edge[1] == to {
				return true
			}
		}
		return false
	}
	for _, from := range statuses {
		for _, to := range statuses {
			if !isAllowed(from, to) {
				assert.False(t, auction.CanTransition(from, to), "%s -> %s", from, to)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, models.StatusScheduled.Terminal())
	assert.False(t, models.StatusActive.Terminal())
	assert.False(t, models.StatusPaused.Terminal())
	assert.True(t, models.StatusEnded.Terminal())
	assert.True(t, models.StatusCancelled.Terminal())
	assert.True(t, models.StatusSettled.Terminal())
}

func TestParseStatus(t *testing.T) {
	status, err := models.ParseStatus("active")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)

	_, err = models.ParseStatus("archived")
	assert.Error(t, err)
}
