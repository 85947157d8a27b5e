package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coursedesk/chat-service/internal/domain"
)

// MemoryMessageRepository keeps messages per room in process memory. It
// backs the service when no Mongo URI is configured and is the store used in
// tests. Expiry is enforced at read time.
type MemoryMessageRepository struct {
	mu    sync.RWMutex
	rooms map[string][]*domain.Message
	now   func() time.Time
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		rooms: make(map[string][]*domain.Message),
		now:   time.Now,
	}
}

// SetClock overrides the repository's clock. Test hook.
func (r *MemoryMessageRepository) SetClock(now func() time.Time) { r.now = now }

func (r *MemoryMessageRepository) Append(_ context.Context, n domain.NewMessage) (*domain.Message, error) {
	m, err := n.Build(r.now())
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.rooms[m.RoomID] = append(r.rooms[m.RoomID], m)
	r.mu.Unlock()
	return m, nil
}

func (r *MemoryMessageRepository) Page(_ context.Context, roomID string, page, limit int) ([]*domain.Message, error) {
	now := r.now().UTC()

	r.mu.RLock()
	live := make([]*domain.Message, 0, len(r.rooms[roomID]))
	for _, m := range r.rooms[roomID] {
		if !m.Expired(now) {
			live = append(live, m)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].CreatedAt.After(live[j].CreatedAt)
	})

	start := (page - 1) * limit
	if start >= len(live) {
		return []*domain.Message{}, nil
	}
	end := start + limit
	if end > len(live) {
		end = len(live)
	}
	return live[start:end], nil
}
