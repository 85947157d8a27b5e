package ws

import (
	"time"

	"github.com/coursedesk/chat-service/internal/domain"
)

// Event names on the wire. The transport is fire-and-forget: clients get no
// reply to joinRoom/leaveRoom, and a message event answers only with the
// room broadcast.
const (
	EventConnected = "connected"
	EventJoinRoom  = "joinRoom"
	EventLeaveRoom = "leaveRoom"
	EventMessage   = "message"
)

// UserData identifies the joining or leaving user inside an envelope.
type UserData struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	UserID string `json:"userId"`
}

// Envelope is the wire format for every event in both directions. Fields
// are populated per event type; absent fields are omitted.
type Envelope struct {
	Event      string           `json:"event"`
	RoomID     string           `json:"roomId,omitempty"`
	SenderID   string           `json:"senderId,omitempty"`
	Message    string           `json:"message,omitempty"`
	Attachment string           `json:"attachment,omitempty"`
	ReplyTo    *domain.ReplyRef `json:"replyTo,omitempty"`
	UserData   *UserData        `json:"userData,omitempty"`
	CreatedAt  *time.Time       `json:"createdAt,omitempty"`
}
