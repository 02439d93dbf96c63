package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresPostRepository implements PostRepository on top of GORM.
// Likes live in the post_likes table, whose composite primary key is the like set.
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost inserts the post and increments the author's counter in one transaction
func (r *PostgresPostRepository) CreatePost(ctx context.Context, authorID int64, text string) (*models.Post, error) {
	req, err := models.NewCreatePostRequest(authorID, text)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  req.AuthorID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		res := tx.Model(&models.User{}).
			Where("user_id = ?", req.AuthorID).
			UpdateColumn("post_count", gorm.Expr("post_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.LikedBy = []int64{}
	return post, nil
}

// GetPostByID retrieves a post with its like set
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	return loadPost(r.db.WithContext(ctx), id)
}

func loadPost(tx *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	post.LikedBy = []int64{}
	err := tx.Model(&models.PostLike{}).
		Where("post_id = ?", id).
		Order("created_at").
		Pluck("user_id", &post.LikedBy).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetRandomPost picks a uniformly random offset into the posts table; nil when there are no posts
func (r *PostgresPostRepository) GetRandomPost(ctx context.Context) (*models.Post, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	var posts []models.Post
	offset := rand.Int63n(count)
	if err := db.Order("created_at, id").Offset(int(offset)).Limit(1).Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	if err := attachLikes(db, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// GetPostsByUserID retrieves up to limit posts of one author ordered by creation time
func (r *PostgresPostRepository) GetPostsByUserID(ctx context.Context, authorID int64, limit int64, newestFirst bool) ([]models.Post, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	db := r.db.WithContext(ctx)
	var posts []models.Post
	err := db.Where("author_id = ?", authorID).
		Order(order).
		Limit(int(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := attachLikes(db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachLikes fills LikedBy of every post from the like rows, oldest like first
func attachLikes(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].LikedBy = []int64{}
	}

	var likes []models.PostLike
	err := tx.Where("post_id IN ?", ids).
		Order("created_at").
		Find(&likes).Error
	if err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}
	for _, like := range likes {
		i := index[like.PostID]
		posts[i].LikedBy = append(posts[i].LikedBy, like.UserID)
	}
	return nil
}

// LikePost records the like and bumps the counter only when the like row was actually inserted
func (r *PostgresPostRepository) LikePost(ctx context.Context, postID string, userID int64) (*models.Post, error) {
	var post *models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return models.ErrPostNotFound
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PostLike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrAlreadyLiked
		}

		err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
		if err != nil {
			return err
		}

		post, err = loadPost(tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// CountPosts returns the number of posts
func (r *PostgresPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// SumLikes returns the sum of the like counters of all posts
func (r *PostgresPostRepository) SumLikes(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Select("COALESCE(SUM(likes), 0)").Scan(&total).Error
	return total, err
}
