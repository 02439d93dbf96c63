package repositories

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/miniblog-bot/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Repositories bundles the stores the bot handlers depend on
type Repositories struct {
	Users         UserRepository
	Posts         PostRepository
	Subscriptions SubscriptionRepository
	Sessions      SessionRepository
}

// NewMongoRepositories wires every repository to a MongoDB database
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:         NewMongoUserRepository(db),
		Posts:         NewMongoPostRepository(db),
		Subscriptions: NewMongoSubscriptionRepository(db),
		Sessions:      NewMongoSessionRepository(db),
	}
}

// NewPostgresRepositories wires every repository to a GORM connection
func NewPostgresRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewPostgresUserRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Subscriptions: NewPostgresSubscriptionRepository(db),
		Sessions:      NewPostgresSessionRepository(db),
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
// The unique indexes carry the one-user-per-id and one-edge-per-pair invariants.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}},
		},
		"posts": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "subscriberId", Value: 1}, {Key: "targetId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "targetId", Value: 1}}},
		},
		"sessions": {
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	log.Println("MongoDB indexes ensured.")
	return nil
}

// AutoMigrate creates or updates the SQL schema
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PostLike{},
		&models.Subscription{},
		&models.Session{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Println("SQL auto-migrations completed for all models.")
	return nil
}
