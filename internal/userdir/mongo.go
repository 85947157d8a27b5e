package userdir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoDirectory struct {
	col *mongo.Collection
}

// NewMongoDirectory returns a Directory over the users collection.
func NewMongoDirectory(col *mongo.Collection) Directory {
	return &mongoDirectory{col: col}
}

func (d *mongoDirectory) FindByID(ctx context.Context, userID string) (*User, error) {
	var u User
	err := d.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}
	return &u, nil
}

func (d *mongoDirectory) SetOnlineStatus(ctx context.Context, userID, status string) error {
	update := bson.M{"$set": bson.M{"is_online": status == StatusOnline}}
	if status == StatusOffline {
		update = bson.M{"$set": bson.M{
			"is_online": false,
			"last_seen": time.Now().UTC(),
		}}
	}
	_, err := d.col.UpdateByID(ctx, userID, update)
	if err != nil {
		return fmt.Errorf("set status of %s: %w", userID, err)
	}
	return nil
}

// IncrementUnread uses $inc so concurrent messages never lose updates.
func (d *mongoDirectory) IncrementUnread(ctx context.Context, userID string) error {
	_, err := d.col.UpdateByID(ctx, userID, bson.M{"$inc": bson.M{"unread_messages_count": 1}})
	if err != nil {
		return fmt.Errorf("increment unread of %s: %w", userID, err)
	}
	return nil
}

func (d *mongoDirectory) ClearUnread(ctx context.Context, userID string) error {
	_, err := d.col.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"unread_messages_count": 0}})
	if err != nil {
		return fmt.Errorf("clear unread of %s: %w", userID, err)
	}
	return nil
}
