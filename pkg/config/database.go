package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anonto42/miniblog-bot/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the connection of the configured store driver
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client

	mongoDatabase string
}

// InitDB connects to the store selected by cfg.StoreDriver and prepares its schema
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		postgresDB, err := initPostgres(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if err := repositories.AutoMigrate(postgresDB); err != nil {
			return nil, err
		}
		return &DB{Postgres: postgresDB}, nil

	case DriverMongo:
		mongoClient, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db := &DB{Mongo: mongoClient, mongoDatabase: cfg.MongoDatabase}
		if err := repositories.EnsureMongoIndexes(ctx, mongoClient.Database(cfg.MongoDatabase)); err != nil {
			db.CloseDB()
			return nil, err
		}
		return db, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// Repositories wires the repositories to the open connection
func (db *DB) Repositories() *repositories.Repositories {
	if db.Postgres != nil {
		return repositories.NewPostgresRepositories(db.Postgres)
	}
	return repositories.NewMongoRepositories(db.Mongo.Database(db.mongoDatabase))
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL!")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("Successfully connected to MongoDB!")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			log.Printf("Error getting SQL DB from GORM: %v\n", err)
		} else if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing PostgreSQL connection: %v\n", err)
		} else {
			log.Println("PostgreSQL connection closed.")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Printf("Error closing MongoDB connection: %v\n", err)
		} else {
			log.Println("MongoDB connection closed.")
		}
	}
}
