package websocket

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients watching the specified desktop
	Publish(desktopID int32, event Event)
	// DisconnectViewers closes every non-owner connection of the desktop
	DisconnectViewers(desktopID int32)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the desktop
func (h *Hub) Publish(desktopID int32, event Event) {
	h.Broadcast(desktopID, event)
}

// DisconnectViewers implements EventPublisher
func (h *Hub) DisconnectViewers(desktopID int32) {
	h.CloseViewers(desktopID)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(desktopID int32, event Event) {}

// DisconnectViewers does nothing
func (n *NoOpPublisher) DisconnectViewers(desktopID int32) {}
