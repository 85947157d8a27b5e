package userdir

import (
	"context"
	"sync"
	"time"
)

// MemoryDirectory is an in-process Directory used in tests and when the
// service runs without Mongo.
type MemoryDirectory struct {
	mu    sync.Mutex
	users map[string]*User
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{users: make(map[string]*User)}
}

// Put seeds a user record.
func (d *MemoryDirectory) Put(u User) {
	d.mu.Lock()
	cp := u
	d.users[u.ID] = &cp
	d.mu.Unlock()
}

func (d *MemoryDirectory) FindByID(_ context.Context, userID string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (d *MemoryDirectory) SetOnlineStatus(_ context.Context, userID, status string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return nil
	}
	u.IsOnline = status == StatusOnline
	if status == StatusOffline {
		now := time.Now().UTC()
		u.LastSeen = &now
	}
	return nil
}

func (d *MemoryDirectory) IncrementUnread(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[userID]; ok {
		u.UnreadCount++
	}
	return nil
}

func (d *MemoryDirectory) ClearUnread(_ context.Context, userID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.users[userID]; ok {
		u.UnreadCount = 0
	}
	return nil
}
