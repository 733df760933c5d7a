package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Availability(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := Event{Capacity: 3, CurrentRegistrations: 2, IsActive: true, RegistrationDeadline: now.Add(time.Hour)}

	assert.Equal(t, 1, e.AvailableSpots())
	assert.False(t, e.IsFull())
	assert.True(t, e.RegistrationOpen(now))
	assert.False(t, e.RegistrationOpen(now.Add(time.Hour)))

	e.CurrentRegistrations = 3
	assert.Equal(t, 0, e.AvailableSpots())
	assert.True(t, e.IsFull())

	e.IsActive = false
	assert.False(t, e.RegistrationOpen(now))
}
