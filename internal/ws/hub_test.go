package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHubBroadcastReachesOnlySubscribedRoom(t *testing.T) {
	hub := NewHub(16, nil, zap.NewNop().Sugar())
	t.Cleanup(hub.Close)

	inRoom := NewClient(nil, 0)
	elsewhere := NewClient(nil, 0)
	hub.Subscribe("r1", inRoom)
	hub.Subscribe("r2", elsewhere)

	require.NoError(t, hub.Broadcast(context.Background(), "r1", []byte("ping")))

	select {
	case b := <-inRoom.send:
		assert.Equal(t, "ping", string(b))
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
	select {
	case b := <-elsewhere.send:
		t.Fatalf("leaked across rooms: %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(16, nil, zap.NewNop().Sugar())
	t.Cleanup(hub.Close)

	c := NewClient(nil, 0)
	hub.Subscribe("r1", c)
	hub.Unsubscribe("r1", c)

	require.NoError(t, hub.Broadcast(context.Background(), "r1", []byte("ping")))

	select {
	case b := <-c.send:
		t.Fatalf("delivery after unsubscribe: %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubEvictsStalledSubscriber(t *testing.T) {
	hub := NewHub(16, nil, zap.NewNop().Sugar())
	t.Cleanup(hub.Close)

	stalled := NewClient(nil, 0)
	hub.Subscribe("r1", stalled)
	for i := 0; i < cap(stalled.send); i++ {
		stalled.send <- []byte("fill")
	}

	require.NoError(t, hub.Broadcast(context.Background(), "r1", []byte("overflow")))

	assert.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.rooms["r1"]
		return !ok
	}, time.Second, 10*time.Millisecond, "stalled client should be evicted")
}
