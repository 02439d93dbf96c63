package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post and like operations
type PostRepository interface {
	CreatePost(ctx context.Context, authorID int64, text string) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetRandomPost(ctx context.Context) (*models.Post, error)
	GetPostsByUserID(ctx context.Context, authorID int64, limit int64, newestFirst bool) ([]models.Post, error)
	LikePost(ctx context.Context, postID string, userID int64) (*models.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	SumLikes(ctx context.Context) (int64, error)
}

// postDocument is the MongoDB layout of a post, with the like set embedded
type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"userId"`
	Text      string             `bson:"text"`
	Likes     int64              `bson:"likes"`
	LikedBy   []int64            `bson:"likedBy"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *postDocument) toModel() *models.Post {
	likedBy := d.LikedBy
	if likedBy == nil {
		likedBy = []int64{}
	}
	return &models.Post{
		ID:        d.ID.Hex(),
		AuthorID:  d.UserID,
		Text:      d.Text,
		Likes:     d.Likes,
		LikedBy:   likedBy,
		CreatedAt: d.CreatedAt,
	}
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
	users      *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		collection: db.Collection("posts"),
		users:      db.Collection("users"),
	}
}

// CreatePost inserts a post and bumps the author's post counter.
// The two writes are not transactional: if the counter update fails the post
// stays and the counter reads one short.
func (r *MongoPostRepository) CreatePost(ctx context.Context, authorID int64, text string) (*models.Post, error) {
	req, err := models.NewCreatePostRequest(authorID, text)
	if err != nil {
		return nil, err
	}

	doc := &postDocument{
		ID:        primitive.NewObjectID(),
		UserID:    req.AuthorID,
		Text:      req.Text,
		Likes:     0,
		LikedBy:   []int64{},
		CreatedAt: time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	_, err = r.users.UpdateOne(ctx, bson.M{"userId": req.AuthorID}, bson.M{"$inc": bson.M{"postCount": 1}})
	if err != nil {
		log.Printf("[POSTS] post %s created but post count of user %d not incremented: %v", doc.ID.Hex(), req.AuthorID, err)
	}
	return doc.toModel(), nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrPostNotFound
	}

	var doc postDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

// GetRandomPost draws one post uniformly with the $sample stage; nil when there are no posts
func (r *MongoPostRepository) GetRandomPost(ctx context.Context) (*models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.D{{Key: "size", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return nil, cursor.Err()
	}
	var doc postDocument
	if err := cursor.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// GetPostsByUserID retrieves up to limit posts of one author ordered by creation time
func (r *MongoPostRepository) GetPostsByUserID(ctx context.Context, authorID int64, limit int64, newestFirst bool) ([]models.Post, error) {
	direction := 1
	if newestFirst {
		direction = -1
	}
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: direction}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": authorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, *docs[i].toModel())
	}
	return posts, nil
}

// LikePost adds userID to the like set and increments the counter in one conditional update.
// The filter only matches while userID is absent from likedBy, so a repeated like never increments.
func (r *MongoPostRepository) LikePost(ctx context.Context, postID string, userID int64) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, models.ErrPostNotFound
	}

	filter := bson.M{"_id": objID, "likedBy": bson.M{"$ne": userID}}
	update := bson.M{
		"$inc":      bson.M{"likes": 1},
		"$addToSet": bson.M{"likedBy": userID},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to like post %s: %w", postID, err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, models.ErrPostNotFound
	}
	return nil, models.ErrAlreadyLiked
}

// CountPosts returns the number of posts
func (r *MongoPostRepository) CountPosts(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.D{})
}

// SumLikes returns the sum of the like counters of all posts
func (r *MongoPostRepository) SumLikes(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$likes"}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
