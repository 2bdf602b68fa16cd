package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*Hub)(nil)
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", 1)
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(1, DesktopVisibilityUpdated(map[string]interface{}{"isPublic": true}))

	// Allow async broadcast to complete
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 1)
}

func TestHub_DisconnectViewers(t *testing.T) {
	hub := NewHub()

	owner := newOwnerClient("owner", 7)
	viewer := newMockClient("viewer", 7)
	hub.Register(owner)
	hub.Register(viewer)

	var publisher EventPublisher = hub
	publisher.DisconnectViewers(7)

	assert.True(t, viewer.IsClosed())
	assert.False(t, owner.IsClosed())
	assert.Equal(t, 1, hub.ClientCount(7))
}

func TestNoOpPublisher(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(1, DesktopStateUpdated(nil))
		publisher.DisconnectViewers(1)
	})
}

func TestNoOpPublisher_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*NoOpPublisher)(nil)
}
