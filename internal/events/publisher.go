// Package events publishes accepted chat messages to Kafka for the
// notification service. The publisher is best-effort: the message is already
// durable and broadcast by the time we get here, so a broker outage only
// costs notifications.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/domain"
)

type MessageAccepted struct {
	MessageID string    `json:"message_id"`
	RoomID    string    `json:"room_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

// NewPublisher builds a Kafka publisher. Returns nil when no brokers are
// configured; a nil Publisher is a no-op.
func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w, log: log}
}

// PublishMessageAccepted emits one event per stored message, keyed by room
// so the notification consumer sees each room's events in order.
func (p *Publisher) PublishMessageAccepted(ctx context.Context, m *domain.Message) {
	if p == nil {
		return
	}
	ev := MessageAccepted{
		MessageID: m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Warnw("marshal message event", "err", err)
		return
	}
	msg := kafka.Message{Key: []byte(m.RoomID), Value: b, Time: m.CreatedAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnw("publish message event", "messageId", m.ID, "err", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
