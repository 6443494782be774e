// Package pubsub provides a generic publish/subscribe event system used for
// registry reload notifications.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// ReloadedEvent marks a registry that replaced the previous one.
	ReloadedEvent EventType = "reloaded"
	// ReloadFailedEvent marks a rebuild that failed; the previous registry stays current.
	ReloadFailedEvent EventType = "reload_failed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
