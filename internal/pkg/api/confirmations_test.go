package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmations(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewConfirmations(2 * time.Minute)
	c.now = func() time.Time { return now }

	intent := c.Create("DELETE backoffice")
	assert.NotEmpty(t, intent.Id)
	assert.Equal(t, now.Add(2*time.Minute), intent.ExpiresAt)

	assert.NoError(t, c.Consume(intent.Id, "DELETE backoffice"))

	// Single use
	assert.ErrorIs(t, c.Consume(intent.Id, "DELETE backoffice"), ErrUnknownIntent)
	assert.ErrorIs(t, c.Consume("nope", "DELETE backoffice"), ErrUnknownIntent)
}

func TestConfirmationsWrongPhraseBurnsIntent(t *testing.T) {
	c := NewConfirmations(time.Minute)
	intent := c.Create("DELETE backoffice")

	assert.ErrorIs(t, c.Consume(intent.Id, "delete backoffice"), ErrPhraseMismatch)
	assert.ErrorIs(t, c.Consume(intent.Id, "DELETE backoffice"), ErrUnknownIntent)
}

func TestConfirmationsExpiry(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewConfirmations(time.Minute)
	c.now = func() time.Time { return now }

	expired := c.Create("DELETE backoffice")
	now = now.Add(61 * time.Second)
	assert.ErrorIs(t, c.Consume(expired.Id, "DELETE backoffice"), ErrExpiredIntent)

	// Expired intents are dropped on creation
	c.Create("DELETE backoffice")
	now = now.Add(2 * time.Minute)
	c.Create("DELETE backoffice")
	assert.Equal(t, 1, c.Pending())
}
