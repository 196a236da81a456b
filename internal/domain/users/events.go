package users

import (
	"context"
	"time"
)

// EventKind identifies a user state transition.
type EventKind string

const (
	EventUserCreated EventKind = "user.created"
	EventUserDeleted EventKind = "user.deleted"
)

// SchemaVersion is carried on every event payload for consumer-side evolution.
const SchemaVersion = 1

// Event is a fire-and-forget notification of a completed state transition.
// It exists for the duration of one publish attempt and is never persisted.
// Email is set for user.created only. Timestamp is the emission time, not
// the delivery time.
type Event struct {
	Kind      EventKind `json:"event"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// Notifier publishes domain events to interested external consumers.
// Publish is best-effort: the coordinator never lets its outcome affect the
// result of an already-committed mutation. Connected reports broker
// reachability for health only and must not gate mutations.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Connected() bool
}

func newCreatedEvent(user *User) Event {
	return Event{
		Kind:      EventUserCreated,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now().UTC(),
		Version:   SchemaVersion,
	}
}

func newDeletedEvent(user *User) Event {
	return Event{
		Kind:      EventUserDeleted,
		UserID:    user.ID,
		Timestamp: time.Now().UTC(),
		Version:   SchemaVersion,
	}
}
