package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/coursedesk/chat-service/internal/domain"
)

// Connect dials Mongo and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type mongoMessageRepository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewMongoMessageRepository ensures the retention and paging indexes and
// returns a Mongo-backed message store. The TTL index makes Mongo sweep
// expired documents; reads still filter on expires_at because the sweeper
// only runs periodically.
func NewMongoMessageRepository(ctx context.Context, col *mongo.Collection) (MessageRepository, error) {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
		{
			Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("room_created_idx"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return &mongoMessageRepository{col: col, now: time.Now}, nil
}

func (r *mongoMessageRepository) Append(ctx context.Context, n domain.NewMessage) (*domain.Message, error) {
	m, err := n.Build(r.now())
	if err != nil {
		return nil, err
	}
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (r *mongoMessageRepository) Page(ctx context.Context, roomID string, page, limit int) ([]*domain.Message, error) {
	skip := int64((page - 1) * limit)
	lim := int64(limit)

	filter := bson.M{
		"room_id":    roomID,
		"expires_at": bson.M{"$gt": r.now().UTC()},
	}
	cur, err := r.col.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(lim))
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]*domain.Message, 0, limit)
	for cur.Next(ctx) {
		var m domain.Message
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
