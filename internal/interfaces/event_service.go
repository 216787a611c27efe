package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	EventSnapshotRefreshed EventType = "snapshot_refreshed"
	EventRefreshFailed     EventType = "refresh_failed"
)

// Event represents a system event with optional payload
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService provides pub/sub event distribution
type EventService interface {
	// Subscribe registers a handler for an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish sends an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error
}
