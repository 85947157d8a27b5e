package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := NewRoomQueue(8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n, err := q.Enqueue(ctx, Item{RoomID: "r1", Payload: []byte(fmt.Sprintf("m%d", i))})
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}

	for i := 0; i < 5; i++ {
		it, ok := q.Dequeue()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("m%d", i), string(it.Payload))
	}
}

func TestDequeueEmptySignalsNotError(t *testing.T) {
	q := NewRoomQueue(4)
	it, ok := q.Dequeue()
	assert.False(t, ok)
	assert.Zero(t, it)
	assert.Equal(t, 0, q.Len())
}

func TestEnqueueBlocksWhenFullUntilCancelled(t *testing.T) {
	q := NewRoomQueue(1)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, Item{Payload: []byte("fill")})
	require.NoError(t, err)

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = q.Enqueue(cancelCtx, Item{Payload: []byte("blocked")})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestEnqueueUnblocksWhenConsumerDrains(t *testing.T) {
	q := NewRoomQueue(1)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, Item{Payload: []byte("first")})
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Dequeue()
	}()

	_, err = q.Enqueue(ctx, Item{Payload: []byte("second")})
	require.NoError(t, err)

	it, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "second", string(it.Payload))
}

func TestDispatcherDeliversInAcceptanceOrder(t *testing.T) {
	var mu sync.Mutex
	got := make([]string, 0, 100)
	done := make(chan struct{})

	d := NewDispatcher(256, func(it Item) {
		mu.Lock()
		got = append(got, string(it.Payload))
		if len(got) == 100 {
			close(done)
		}
		mu.Unlock()
	})
	defer d.Close()

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		_, err := d.Enqueue(ctx, Item{RoomID: "r1", Payload: []byte(fmt.Sprintf("m%03d", i))})
		require.NoError(t, err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < 100; i++ {
		assert.Equal(t, fmt.Sprintf("m%03d", i), got[i])
	}
}

func TestDispatcherKeepsRoomsIndependent(t *testing.T) {
	var mu sync.Mutex
	perRoom := map[string][]string{}
	var wg sync.WaitGroup
	wg.Add(40)

	d := NewDispatcher(64, func(it Item) {
		mu.Lock()
		perRoom[it.RoomID] = append(perRoom[it.RoomID], string(it.Payload))
		mu.Unlock()
		wg.Done()
	})
	defer d.Close()

	ctx := context.Background()
	for _, room := range []string{"a", "b"} {
		room := room
		go func() {
			for i := 0; i < 20; i++ {
				_, err := d.Enqueue(ctx, Item{RoomID: room, Payload: []byte(fmt.Sprintf("%s%02d", room, i))})
				assert.NoError(t, err)
			}
		}()
	}

	waitDone := make(chan struct{})
	go func() { wg.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("deliveries missing")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, room := range []string{"a", "b"} {
		require.Len(t, perRoom[room], 20)
		for i, p := range perRoom[room] {
			assert.Equal(t, fmt.Sprintf("%s%02d", room, i), p)
		}
	}
}
