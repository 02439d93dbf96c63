package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository stores wizard state keyed by models.SessionKey
type SessionRepository interface {
	// GetSession returns nil when the key has no live session
	GetSession(ctx context.Context, key string) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, key string) error
}

// MongoSessionRepository implements SessionRepository for MongoDB.
// Expired documents are also removed by the TTL index on expiresAt.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoSessionRepository
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{collection: db.Collection("sessions")}
}

func (r *MongoSessionRepository) GetSession(ctx context.Context, key string) (*models.Session, error) {
	filter := bson.M{"_id": key, "expiresAt": bson.M{"$gt": time.Now()}}
	var session models.Session
	if err := r.collection.FindOne(ctx, filter).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *MongoSessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.Key}, session, opts)
	return err
}

func (r *MongoSessionRepository) DeleteSession(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
