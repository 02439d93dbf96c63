package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/miniblog-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresSessionRepository implements SessionRepository on top of GORM
type PostgresSessionRepository struct {
	db *gorm.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository
func NewPostgresSessionRepository(db *gorm.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) GetSession(ctx context.Context, key string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).
		Where("session_key = ? AND expires_at > ?", key, time.Now()).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *PostgresSessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(session).Error
}

func (r *PostgresSessionRepository) DeleteSession(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "session_key = ?", key).Error
}
