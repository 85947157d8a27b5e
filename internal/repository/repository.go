package repository

import (
	"context"

	"github.com/coursedesk/chat-service/internal/domain"
)

// MessageRepository is the durable append-only store of room messages.
// There is no update or delete operation: messages are immutable and leave
// the store only through retention expiry.
type MessageRepository interface {
	// Append validates, stamps, and writes a new message.
	Append(ctx context.Context, n domain.NewMessage) (*domain.Message, error)
	// Page returns the given page of a room's messages, newest first.
	// Pages past the end return an empty slice, never an error.
	Page(ctx context.Context, roomID string, page, limit int) ([]*domain.Message, error)
}
