package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user directory operations
type UserRepository interface {
	EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error)
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// EnsureUser registers the identity on first contact and refreshes its display fields afterwards.
// The upsert is keyed by the unique userId index, so concurrent calls converge on one document.
func (r *MongoUserRepository) EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	filter := bson.M{"userId": identity.ID}
	update := bson.M{
		"$set": bson.M{
			"username":  identity.Username,
			"firstName": identity.FirstName,
			"lastName":  identity.LastName,
		},
		"$setOnInsert": bson.M{
			"createdAt": time.Now(),
			"postCount": int64(0),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the insert race; the document exists now, so this is a plain update.
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user %d: %w", identity.ID, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by platform id
func (r *MongoUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.findOne(ctx, bson.M{"userId": userID})
}

// GetUserByUsername retrieves a user by username
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, models.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the number of registered users
func (r *MongoUserRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}
