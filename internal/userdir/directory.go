// Package userdir is the chat engine's view of the user-directory service:
// principal lookup, online status, and the per-user unread counter.
package userdir

import (
	"context"
	"time"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User is the directory principal, reduced to the fields the chat path
// reads.
type User struct {
	ID          string     `bson:"_id" json:"id"`
	FirstName   string     `bson:"first_name" json:"firstName"`
	LastName    string     `bson:"last_name" json:"lastName"`
	Email       string     `bson:"email" json:"email"`
	IsOnline    bool       `bson:"is_online" json:"isOnline"`
	LastSeen    *time.Time `bson:"last_seen,omitempty" json:"lastSeen,omitempty"`
	UnreadCount int64      `bson:"unread_messages_count" json:"unreadMessagesCount"`
}

// Directory is the user-directory contract consumed by the chat core.
type Directory interface {
	// FindByID returns nil (no error) when the user does not exist.
	FindByID(ctx context.Context, userID string) (*User, error)
	// SetOnlineStatus marks the user online or offline; going offline also
	// stamps last_seen.
	SetOnlineStatus(ctx context.Context, userID, status string) error
	// IncrementUnread atomically adds one to the user's unread counter.
	IncrementUnread(ctx context.Context, userID string) error
	// ClearUnread atomically resets the counter to zero.
	ClearUnread(ctx context.Context, userID string) error
}
