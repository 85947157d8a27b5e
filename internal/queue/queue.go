package queue

import (
	"context"
	"errors"
)

// Item is one broadcast payload queued for fan-out to a room's subscribers.
type Item struct {
	RoomID  string
	Payload []byte
}

// ErrClosed is returned by Enqueue after the queue has been shut down.
var ErrClosed = errors.New("queue closed")

// RoomQueue is a bounded FIFO buffer for one room. Producers enqueue
// accepted messages; a single consumer drains them in acceptance order.
// When the buffer is full, Enqueue blocks until the consumer frees a slot or
// the context is cancelled, so a slow room applies backpressure to its
// producers instead of growing without bound.
type RoomQueue struct {
	ch   chan Item
	done chan struct{}
}

func NewRoomQueue(capacity int) *RoomQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &RoomQueue{
		ch:   make(chan Item, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue appends at the tail and returns the buffered length after the
// append. Blocks while the queue is full.
func (q *RoomQueue) Enqueue(ctx context.Context, it Item) (int, error) {
	select {
	case q.ch <- it:
		return len(q.ch), nil
	default:
	}
	select {
	case q.ch <- it:
		return len(q.ch), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-q.done:
		return 0, ErrClosed
	}
}

// Dequeue removes and returns the head. The second return value is false
// when the queue is empty; an empty queue is a normal condition, not an
// error.
func (q *RoomQueue) Dequeue() (Item, bool) {
	select {
	case it := <-q.ch:
		return it, true
	default:
		return Item{}, false
	}
}

// Wait blocks until an item is available, the context is cancelled, or the
// queue is closed. Used by the dispatcher's drain loop.
func (q *RoomQueue) Wait(ctx context.Context) (Item, bool) {
	select {
	case it := <-q.ch:
		return it, true
	case <-ctx.Done():
		return Item{}, false
	case <-q.done:
		// drain whatever is left before reporting closed
		select {
		case it := <-q.ch:
			return it, true
		default:
			return Item{}, false
		}
	}
}

// Len returns the number of buffered items.
func (q *RoomQueue) Len() int { return len(q.ch) }

func (q *RoomQueue) close() { close(q.done) }
