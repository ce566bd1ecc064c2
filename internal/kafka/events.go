package kafka

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the user events topic
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)

// UserEvent is the payload of an auth event. ID is unique per event and used for deduplication.
type UserEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUserEvent stamps an event with a fresh ID and the current time
func NewUserEvent(eventType, userID, email, name string) UserEvent {
	return UserEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		Email:      email,
		Name:       name,
		OccurredAt: time.Now().UTC(),
	}
}
