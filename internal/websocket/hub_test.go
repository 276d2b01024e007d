package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestHub() *Hub {
	h := NewHub(nil, nopLogger{})
	go h.Run()
	return h
}

func registerClient(t *testing.T, h *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, buffer)}
	h.register <- client

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		_, ok := h.clients[userID]
		h.mu.RUnlock()
		if ok {
			return client
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("client never registered")
	return nil
}

func waitForClosed(t *testing.T, ch chan []byte) {
	t.Helper()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("Send channel was never closed")
		}
	}
}

func clientCount(h *Hub, userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func TestBroadcastDelivers(t *testing.T) {
	h := newTestHub()
	client := registerClient(t, h, uuid.New(), 1)

	h.Broadcast(Push{Type: "candidates.changed", CreatedAt: time.Now()})

	select {
	case data := <-client.Send:
		assert.Contains(t, string(data), "candidates.changed")
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestBroadcastEvictsSlowClient(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()

	// Unbuffered Send with no reader: the first broadcast cannot deliver
	// and must evict the client instead of crashing the hub.
	slow := registerClient(t, h, userID, 0)

	h.Broadcast(Push{Type: "applications.changed", CreatedAt: time.Now()})

	waitForClosed(t, slow.Send)
	assert.Equal(t, 0, clientCount(h, userID))

	// Hub keeps serving after the eviction.
	h.Broadcast(Push{Type: "applications.changed", CreatedAt: time.Now()})
}

func TestSendEvictsSlowDeviceOnly(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()

	slow := registerClient(t, h, userID, 0)
	fast := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	h.register <- fast
	require.Eventually(t, func() bool { return clientCount(h, userID) == 2 }, time.Second, time.Millisecond)

	h.Send(userID, Push{Type: "session.changed", CreatedAt: time.Now()})

	waitForClosed(t, slow.Send)
	require.Eventually(t, func() bool { return clientCount(h, userID) == 1 }, time.Second, time.Millisecond)

	select {
	case data := <-fast.Send:
		assert.Contains(t, string(data), "session.changed")
	case <-time.After(time.Second):
		t.Fatal("healthy device did not receive the push")
	}
}

func TestUnregisterTwiceIsHarmless(t *testing.T) {
	h := newTestHub()
	userID := uuid.New()
	client := registerClient(t, h, userID, 0)

	// A slow-client eviction and the read pump tearing down can both
	// signal unregister for the same client.
	h.unregister <- client
	h.unregister <- client

	waitForClosed(t, client.Send)
	assert.Equal(t, 0, clientCount(h, userID))
}
