package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/queue"
	"github.com/coursedesk/chat-service/internal/realtime"
)

// Hub maps rooms to their subscribed connections and pushes accepted
// payloads through the per-room delivery queue so every subscriber observes
// the server's acceptance order.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}

	dispatcher *queue.Dispatcher
	bridge     *realtime.Bridge
	log        *zap.SugaredLogger
}

func NewHub(queueCapacity int, bridge *realtime.Bridge, log *zap.SugaredLogger) *Hub {
	h := &Hub{
		rooms:  make(map[string]map[*Client]struct{}),
		bridge: bridge,
		log:    log,
	}
	h.dispatcher = queue.NewDispatcher(queueCapacity, h.deliver)
	bridge.Subscribe(context.Background(), h.fanoutLocal)
	return h
}

// Subscribe adds the connection to a room's fan-out set.
func (h *Hub) Subscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
}

// Unsubscribe removes the connection; the room entry is dropped when empty.
func (h *Hub) Unsubscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast enqueues a payload for ordered delivery to the room. Blocks on
// a full room queue (backpressure) until ctx is cancelled.
func (h *Hub) Broadcast(ctx context.Context, roomID string, payload []byte) error {
	_, err := h.dispatcher.Enqueue(ctx, queue.Item{RoomID: roomID, Payload: payload})
	return err
}

// deliver runs on the room's dispatcher goroutine.
func (h *Hub) deliver(it queue.Item) {
	h.fanoutLocal(it.RoomID, it.Payload)
	h.bridge.PublishBroadcast(context.Background(), it.RoomID, it.Payload)
}

func (h *Hub) fanoutLocal(roomID string, payload []byte) {
	h.mu.RLock()
	set := h.rooms[roomID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(payload) {
			// stalled consumer: evict instead of blocking the room
			h.Unsubscribe(roomID, c)
			c.close()
			h.log.Warnw("evicted slow subscriber", "roomId", roomID)
		}
	}
}

// Close stops the dispatcher and the cross-instance relay.
func (h *Hub) Close() {
	h.dispatcher.Close()
	h.bridge.Close()
}
