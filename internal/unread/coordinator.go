// Package unread keeps the per-user unread counter in step with room
// occupancy. Counter updates run on the message hot path, so every failure
// here is logged and swallowed rather than allowed to abort delivery.
package unread

import (
	"context"

	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/presence"
	"github.com/coursedesk/chat-service/internal/userdir"
)

type Coordinator struct {
	registry *presence.Registry
	dir      userdir.Directory
	log      *zap.SugaredLogger
}

func NewCoordinator(registry *presence.Registry, dir userdir.Directory, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{registry: registry, dir: dir, log: log}
}

// RecordMessage applies the unread rule for one accepted message. The
// counter belongs to the room owner (the user whose id names the room) and
// only moves when the owner messages their own room while nobody else is
// there to read it.
//
// The sender always counts as present: effective occupancy is the room's
// registry members, plus one if the sender holds no entry in that room. An
// owner who messages without having joined is therefore still "alone" and
// still gets the increment.
func (c *Coordinator) RecordMessage(ctx context.Context, roomID, senderID string) {
	if senderID != roomID {
		return
	}
	occupancy := len(c.registry.MembersOf(roomID))
	if !c.registry.Contains(roomID, senderID) {
		occupancy++
	}
	if occupancy != 1 {
		return
	}

	u, err := c.dir.FindByID(ctx, senderID)
	if err != nil {
		c.log.Warnw("unread increment lookup failed", "userId", senderID, "err", err)
		return
	}
	if u == nil {
		c.log.Warnw("unread increment for unknown user", "userId", senderID)
		return
	}
	if err := c.dir.IncrementUnread(ctx, senderID); err != nil {
		c.log.Warnw("unread increment failed", "userId", senderID, "err", err)
	}
}

// Clear resets the counter, typically when an agent joins the owner's room.
func (c *Coordinator) Clear(ctx context.Context, userID string) {
	if err := c.dir.ClearUnread(ctx, userID); err != nil {
		c.log.Warnw("unread clear failed", "userId", userID, "err", err)
	}
}
