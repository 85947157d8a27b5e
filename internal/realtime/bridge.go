// Package realtime is the optional cross-instance layer: it mirrors
// presence into Redis keys other services can read, and relays room
// broadcasts over a pub/sub channel so a room split across several gateway
// instances still sees every message.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const presenceTTL = 60 * time.Second

type remoteEnvelope struct {
	RoomID  string          `json:"roomId"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Bridge connects one gateway instance to Redis. A nil *Bridge is valid and
// turns every method into a local no-op, which is how single-instance
// deployments run.
type Bridge struct {
	rdb      *redis.Client
	prefix   string
	instance string
	log      *zap.SugaredLogger

	cancel context.CancelFunc
}

func NewBridge(rdb *redis.Client, prefix, instanceID string, log *zap.SugaredLogger) *Bridge {
	if rdb == nil {
		return nil
	}
	return &Bridge{rdb: rdb, prefix: prefix, instance: instanceID, log: log}
}

func (b *Bridge) channel() string { return b.prefix + ":rooms" }

func (b *Bridge) presenceKey(userID string) string {
	return fmt.Sprintf("%s:presence:%s", b.prefix, userID)
}

// MarkPresent mirrors a join into Redis with a TTL; RefreshPresence extends
// it on traffic so an abruptly dead instance cannot leave users online
// forever.
func (b *Bridge) MarkPresent(ctx context.Context, userID string) {
	if b == nil {
		return
	}
	if err := b.rdb.Set(ctx, b.presenceKey(userID), "online", presenceTTL).Err(); err != nil {
		b.log.Warnw("presence mirror set failed", "userId", userID, "err", err)
	}
}

func (b *Bridge) RefreshPresence(ctx context.Context, userID string) {
	if b == nil {
		return
	}
	_ = b.rdb.Expire(ctx, b.presenceKey(userID), presenceTTL).Err()
}

func (b *Bridge) MarkAbsent(ctx context.Context, userID string) {
	if b == nil {
		return
	}
	if err := b.rdb.Del(ctx, b.presenceKey(userID)).Err(); err != nil {
		b.log.Warnw("presence mirror del failed", "userId", userID, "err", err)
	}
}

// PublishBroadcast relays a room payload to the other instances.
func (b *Bridge) PublishBroadcast(ctx context.Context, roomID string, payload []byte) {
	if b == nil {
		return
	}
	env := remoteEnvelope{RoomID: roomID, Origin: b.instance, Payload: payload}
	j, _ := json.Marshal(env)
	if err := b.rdb.Publish(ctx, b.channel(), j).Err(); err != nil {
		b.log.Warnw("broadcast publish failed", "roomId", roomID, "err", err)
	}
}

// Subscribe starts the relay consumer. deliver runs for every payload
// published by a different instance; envelopes this instance published are
// skipped so local subscribers never see a message twice.
func (b *Bridge) Subscribe(ctx context.Context, deliver func(roomID string, payload []byte)) {
	if b == nil {
		return
	}
	ctx, b.cancel = context.WithCancel(ctx)
	pubsub := b.rdb.Subscribe(ctx, b.channel())
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					b.log.Warn("room relay subscription closed")
					return
				}
				var env remoteEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				if env.Origin == b.instance {
					continue
				}
				deliver(env.RoomID, env.Payload)
			}
		}
	}()
}

func (b *Bridge) Close() {
	if b == nil || b.cancel == nil {
		return
	}
	b.cancel()
}
