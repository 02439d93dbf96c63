package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository defines the interface for the follow graph
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, subscriberID, targetID int64) error
	Unsubscribe(ctx context.Context, subscriberID, targetID int64) error
	IsSubscribed(ctx context.Context, subscriberID, targetID int64) (bool, error)
	CountSubscribers(ctx context.Context, userID int64) (int64, error)
	CountSubscriptions(ctx context.Context, userID int64) (int64, error)
}

// MongoSubscriptionRepository implements SubscriptionRepository for MongoDB
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriptionRepository creates a new MongoSubscriptionRepository
func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	return &MongoSubscriptionRepository{collection: db.Collection("subscriptions")}
}

// Subscribe inserts the edge; the unique (subscriberId, targetId) index rejects duplicates
func (r *MongoSubscriptionRepository) Subscribe(ctx context.Context, subscriberID, targetID int64) error {
	if err := models.ValidateSubscription(subscriberID, targetID); err != nil {
		return err
	}

	sub := models.Subscription{
		SubscriberID: subscriberID,
		TargetID:     targetID,
		CreatedAt:    time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadySubscribed
		}
		return fmt.Errorf("failed to subscribe %d to %d: %w", subscriberID, targetID, err)
	}
	return nil
}

// Unsubscribe removes the edge if present
func (r *MongoSubscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, targetID int64) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"subscriberId": subscriberID, "targetId": targetID})
	return err
}

func (r *MongoSubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"subscriberId": subscriberID, "targetId": targetID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoSubscriptionRepository) CountSubscribers(ctx context.Context, userID int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"targetId": userID})
}

func (r *MongoSubscriptionRepository) CountSubscriptions(ctx context.Context, userID int64) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"subscriberId": userID})
}
