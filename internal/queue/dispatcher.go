package queue

import (
	"context"
	"sync"
)

// Fanout delivers one drained item to a room's current subscribers. It runs
// on the room's dispatcher goroutine, so for any one room calls happen
// strictly in enqueue order.
type Fanout func(it Item)

// Dispatcher owns one RoomQueue and one drain goroutine per active room.
// The single drain goroutine is what turns "many producers enqueue
// concurrently" into "every subscriber sees the same order".
type Dispatcher struct {
	mu       sync.Mutex
	rooms    map[string]*RoomQueue
	capacity int
	fanout   Fanout

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(capacity int, fanout Fanout) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		rooms:    make(map[string]*RoomQueue),
		capacity: capacity,
		fanout:   fanout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue buffers an item for the room, creating the room's queue and drain
// goroutine on first use. Returns the buffered length after the append.
func (d *Dispatcher) Enqueue(ctx context.Context, it Item) (int, error) {
	q := d.roomQueue(it.RoomID)
	return q.Enqueue(ctx, it)
}

// Close stops all drain goroutines. Buffered items still in flight on a
// drain goroutine are delivered; the rest are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	for _, q := range d.rooms {
		q.close()
	}
	d.mu.Unlock()
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) roomQueue(roomID string) *RoomQueue {
	d.mu.Lock()
	defer d.mu.Unlock()
	if q, ok := d.rooms[roomID]; ok {
		return q
	}
	q := NewRoomQueue(d.capacity)
	d.rooms[roomID] = q
	d.wg.Add(1)
	go d.drain(q)
	return q
}

func (d *Dispatcher) drain(q *RoomQueue) {
	defer d.wg.Done()
	for {
		it, ok := q.Wait(d.ctx)
		if !ok {
			return
		}
		d.fanout(it)
	}
}
