package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Routing keys of the events published on the groceries exchange.
const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
	EventEntryCreated   = "entry.created"
	EventEntryDeleted   = "entry.deleted"
)

// EventPublisher delivers domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// UserEvent is the body of user.* events.
type UserEvent struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EntryEvent is the body of entry.* events.
type EntryEvent struct {
	EntryID    string    `json:"entryId"`
	OwnerID    string    `json:"ownerId"`
	Amount     float64   `json:"amount,omitempty"`
	Date       string    `json:"date,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishEvent is best effort: a broker failure never fails the operation.
func publishEvent(ctx context.Context, pub EventPublisher, routingKey string, payload any) {
	if pub == nil {
		log.Printf("Event publisher is not configured. Skipping %s event.", routingKey)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(ctx, routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", routingKey, err)
	}
}
