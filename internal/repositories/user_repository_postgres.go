package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/miniblog-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresUserRepository implements UserRepository on top of GORM
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// EnsureUser inserts the user or, on a primary key conflict, refreshes its display fields
func (r *PostgresUserRepository) EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	user := models.User{
		UserID:    identity.ID,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name"}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to register user %d: %w", identity.ID, err)
	}
	return r.GetUserByID(ctx, identity.ID)
}

// GetUserByID retrieves a user by platform id
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	return r.first(ctx, "user_id = ?", userID)
}

// GetUserByUsername retrieves a user by username
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, models.ErrUserNotFound
	}
	return r.first(ctx, "username = ?", username)
}

func (r *PostgresUserRepository) first(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the number of registered users
func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
