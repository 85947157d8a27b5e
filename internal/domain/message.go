package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RetentionWindow is how long a message stays readable after creation.
// Messages past this window are dropped by the store, never by an API call.
const RetentionWindow = 7 * 24 * time.Hour

// ReplyRef points at the message a new message replies to. The snippet is
// denormalized so clients can render the quote without a second lookup.
type ReplyRef struct {
	MessageID string `bson:"message_id" json:"messageId"`
	Snippet   string `bson:"snippet" json:"snippet"`
	SenderID  string `bson:"sender_id" json:"senderId"`
}

// Message is one chat message in a room. Immutable once appended.
type Message struct {
	ID         string    `bson:"_id" json:"id"`
	RoomID     string    `bson:"room_id" json:"roomId"`
	SenderID   string    `bson:"sender_id" json:"senderId"`
	Body       string    `bson:"body" json:"message"`
	Attachment string    `bson:"attachment,omitempty" json:"attachment,omitempty"`
	ReplyTo    *ReplyRef `bson:"reply_to,omitempty" json:"replyTo,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	ExpiresAt  time.Time `bson:"expires_at" json:"-"`
}

// NewMessage carries the caller-supplied fields of a message to append.
type NewMessage struct {
	RoomID     string
	SenderID   string
	Body       string
	Attachment string
	ReplyTo    *ReplyRef
}

// Build validates the input and stamps identity and timestamps.
func (n NewMessage) Build(now time.Time) (*Message, error) {
	if n.RoomID == "" || n.SenderID == "" {
		return nil, ErrBadRequest
	}
	if strings.TrimSpace(n.Body) == "" && n.Attachment == "" {
		return nil, ErrEmptyMessage
	}
	now = now.UTC()
	return &Message{
		ID:         uuid.NewString(),
		RoomID:     n.RoomID,
		SenderID:   n.SenderID,
		Body:       n.Body,
		Attachment: n.Attachment,
		ReplyTo:    n.ReplyTo,
		CreatedAt:  now,
		ExpiresAt:  now.Add(RetentionWindow),
	}, nil
}

// Expired reports whether the message is past its retention window at t.
func (m *Message) Expired(t time.Time) bool {
	return !m.ExpiresAt.After(t)
}
