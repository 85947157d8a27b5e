package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/domain"
	"github.com/coursedesk/chat-service/internal/events"
	"github.com/coursedesk/chat-service/internal/presence"
	"github.com/coursedesk/chat-service/internal/realtime"
	"github.com/coursedesk/chat-service/internal/repository"
	"github.com/coursedesk/chat-service/internal/unread"
	"github.com/coursedesk/chat-service/internal/userdir"
)

// Options are the per-connection transport knobs.
type Options struct {
	PingInterval  time.Duration
	WriteDeadline time.Duration
	MaxMsgSize    int64
	RateLimitRPS  int
}

// Gateway drives the session protocol for every connection:
// Connected -> InRoom -> gone. Malformed payloads are logged and dropped —
// the transport has no response path to carry an error back.
type Gateway struct {
	hub      *Hub
	registry *presence.Registry
	repo     repository.MessageRepository
	dir      userdir.Directory
	unread   *unread.Coordinator
	pub      *events.Publisher
	bridge   *realtime.Bridge
	log      *zap.SugaredLogger
	opts     Options
}

func NewGateway(
	hub *Hub,
	registry *presence.Registry,
	repo repository.MessageRepository,
	dir userdir.Directory,
	coordinator *unread.Coordinator,
	pub *events.Publisher,
	bridge *realtime.Bridge,
	log *zap.SugaredLogger,
	opts Options,
) *Gateway {
	if opts.PingInterval == 0 {
		opts.PingInterval = 25 * time.Second
	}
	if opts.WriteDeadline == 0 {
		opts.WriteDeadline = 10 * time.Second
	}
	if opts.MaxMsgSize == 0 {
		opts.MaxMsgSize = 64 * 1024
	}
	return &Gateway{
		hub:      hub,
		registry: registry,
		repo:     repo,
		dir:      dir,
		unread:   coordinator,
		pub:      pub,
		bridge:   bridge,
		log:      log,
		opts:     opts,
	}
}

// HandleConn owns the connection from upgrade to teardown. Runs on the
// fiber websocket goroutine; returns when the socket dies.
func (g *Gateway) HandleConn(conn *websocket.Conn) {
	c := NewClient(conn, g.opts.RateLimitRPS)
	defer g.teardown(c)

	go c.writePump(g.opts.PingInterval, g.opts.WriteDeadline)

	if b, err := json.Marshal(Envelope{Event: EventConnected}); err == nil {
		c.enqueue(b)
	}

	conn.SetReadLimit(g.opts.MaxMsgSize)
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		if !c.limiter.Allow() {
			continue
		}
		g.handleEvent(context.Background(), c, data)
	}
}

// teardown is the implicit Leave: a connection that drops without a
// leaveRoom event must not linger in the registry.
func (g *Gateway) teardown(c *Client) {
	roomID, userID := c.session()
	if userID != "" {
		g.leave(context.Background(), c, roomID, userID)
	}
	c.close()
}

func (g *Gateway) handleEvent(ctx context.Context, c *Client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		g.log.Debugw("dropping undecodable frame", "err", err)
		return
	}
	switch env.Event {
	case EventJoinRoom:
		g.handleJoin(ctx, c, env)
	case EventLeaveRoom:
		g.handleLeave(ctx, c, env)
	case EventMessage:
		g.handleMessage(ctx, c, env)
	default:
		g.log.Debugw("dropping unknown event", "event", env.Event)
	}
}

func (g *Gateway) handleJoin(ctx context.Context, c *Client, env Envelope) {
	if env.RoomID == "" || env.UserData == nil ||
		env.UserData.Name == "" || env.UserData.Email == "" || env.UserData.UserID == "" {
		g.log.Warnw("dropping malformed join", "roomId", env.RoomID)
		return
	}
	ud := env.UserData

	// a rejoin into another room must not keep receiving the old room's
	// fan-out
	if prevRoom, _ := c.session(); prevRoom != "" && prevRoom != env.RoomID {
		g.hub.Unsubscribe(prevRoom, c)
	}

	p := g.registry.Join(presence.Participant{
		Name:   ud.Name,
		RoomID: env.RoomID,
		Email:  ud.Email,
		UserID: ud.UserID,
	})
	g.hub.Subscribe(p.RoomID, c)
	c.setSession(p.RoomID, p.UserID)
	g.bridge.MarkPresent(ctx, p.UserID)

	if p.UserID != env.RoomID {
		// an agent entered the customer's room: the customer is no longer
		// waiting unseen
		g.unread.Clear(ctx, env.RoomID)
	} else if err := g.dir.SetOnlineStatus(ctx, env.RoomID, userdir.StatusOnline); err != nil {
		g.log.Warnw("online status update failed", "userId", env.RoomID, "err", err)
	}
}

func (g *Gateway) handleLeave(ctx context.Context, c *Client, env Envelope) {
	if env.UserData == nil || env.UserData.UserID == "" {
		g.log.Warnw("dropping malformed leave", "roomId", env.RoomID)
		return
	}
	g.leave(ctx, c, env.RoomID, env.UserData.UserID)
	c.clearSession()
}

func (g *Gateway) leave(ctx context.Context, c *Client, roomID, userID string) {
	g.registry.Leave(userID)
	if roomID != "" {
		g.hub.Unsubscribe(roomID, c)
	}
	g.bridge.MarkAbsent(ctx, userID)

	if userID == roomID {
		if err := g.dir.SetOnlineStatus(ctx, userID, userdir.StatusOffline); err != nil {
			g.log.Warnw("offline status update failed", "userId", userID, "err", err)
		}
	}
}

func (g *Gateway) handleMessage(ctx context.Context, c *Client, env Envelope) {
	// whitespace-only submissions are a silent no-op, not an error
	if strings.TrimSpace(env.Message) == "" && env.Attachment == "" {
		return
	}
	if env.RoomID == "" || env.SenderID == "" {
		g.log.Warnw("dropping malformed message", "roomId", env.RoomID)
		return
	}

	m, err := g.repo.Append(ctx, domain.NewMessage{
		RoomID:     env.RoomID,
		SenderID:   env.SenderID,
		Body:       env.Message,
		Attachment: env.Attachment,
		ReplyTo:    env.ReplyTo,
	})
	if err != nil {
		g.log.Errorw("message append failed", "roomId", env.RoomID, "err", err)
		return
	}

	out := Envelope{
		Event:      EventMessage,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		Message:    m.Body,
		Attachment: m.Attachment,
		ReplyTo:    m.ReplyTo,
		CreatedAt:  &m.CreatedAt,
	}
	b, err := json.Marshal(out)
	if err != nil {
		g.log.Errorw("marshal broadcast", "err", err)
		return
	}
	if err := g.hub.Broadcast(ctx, m.RoomID, b); err != nil {
		g.log.Warnw("broadcast enqueue failed", "roomId", m.RoomID, "err", err)
	}

	g.unread.RecordMessage(ctx, m.RoomID, m.SenderID)
	g.bridge.RefreshPresence(ctx, m.SenderID)
	g.pub.PublishMessageAccepted(ctx, m)
}
