package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeStateUpdated      EventType = "state_updated"
	EventTypeVisibilityUpdated EventType = "visibility_updated"
	EventTypeBackgroundUpdated EventType = "background_updated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeDesktop EntityType = "desktop"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "desktop.state_updated"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "desktop"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DesktopStateUpdated creates a desktop.state_updated event
func DesktopStateUpdated(payload interface{}) Event {
	return NewEvent(EventTypeStateUpdated, EntityTypeDesktop, payload)
}

// DesktopVisibilityUpdated creates a desktop.visibility_updated event
func DesktopVisibilityUpdated(payload interface{}) Event {
	return NewEvent(EventTypeVisibilityUpdated, EntityTypeDesktop, payload)
}

// DesktopBackgroundUpdated creates a desktop.background_updated event
func DesktopBackgroundUpdated(payload interface{}) Event {
	return NewEvent(EventTypeBackgroundUpdated, EntityTypeDesktop, payload)
}
