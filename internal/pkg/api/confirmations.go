package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownIntent  = errors.New("unknown or already used confirmation")
	ErrExpiredIntent  = errors.New("confirmation expired")
	ErrPhraseMismatch = errors.New("confirmation phrase does not match")
)

// Intent is a pending purge confirmation.
type Intent struct {
	Id        string    `json:"confirmationId"`
	Phrase    string    `json:"phrase"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Confirmations holds single-use purge intents.
type Confirmations struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	intents map[string]Intent
}

func NewConfirmations(ttl time.Duration) *Confirmations {
	return &Confirmations{
		ttl:     ttl,
		now:     time.Now,
		intents: make(map[string]Intent),
	}
}

// Create registers a new intent to be confirmed with the phrase.
func (c *Confirmations) Create(phrase string) Intent {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, intent := range c.intents {
		if now.After(intent.ExpiresAt) {
			delete(c.intents, id)
		}
	}

	intent := Intent{
		Id:        uuid.NewString(),
		Phrase:    phrase,
		ExpiresAt: now.Add(c.ttl).UTC(),
	}
	c.intents[intent.Id] = intent
	return intent
}

// Consume checks the phrase of an intent. The intent is gone afterwards,
// whatever the outcome.
func (c *Confirmations) Consume(id, phrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	intent, ok := c.intents[id]
	if !ok {
		return ErrUnknownIntent
	}
	delete(c.intents, id)

	if c.now().After(intent.ExpiresAt) {
		return ErrExpiredIntent
	}
	if phrase != intent.Phrase {
		return ErrPhraseMismatch
	}
	return nil
}

// Pending returns the number of live intents.
func (c *Confirmations) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.intents)
}
