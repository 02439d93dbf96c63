package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/miniblog-bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresSubscriptionRepository implements SubscriptionRepository on top of GORM
type PostgresSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresSubscriptionRepository creates a new PostgresSubscriptionRepository
func NewPostgresSubscriptionRepository(db *gorm.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

// Subscribe inserts the edge with ON CONFLICT DO NOTHING; no inserted row means it already existed
func (r *PostgresSubscriptionRepository) Subscribe(ctx context.Context, subscriberID, targetID int64) error {
	if err := models.ValidateSubscription(subscriberID, targetID); err != nil {
		return err
	}

	sub := &models.Subscription{SubscriberID: subscriberID, TargetID: targetID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(sub)
	if res.Error != nil {
		return fmt.Errorf("failed to subscribe %d to %d: %w", subscriberID, targetID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrAlreadySubscribed
	}
	return nil
}

// Unsubscribe removes the edge if present
func (r *PostgresSubscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, targetID int64) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Delete(&models.Subscription{}).Error
}

func (r *PostgresSubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, targetID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ? AND target_id = ?", subscriberID, targetID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("target_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresSubscriptionRepository) CountSubscriptions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("subscriber_id = ?", userID).Count(&count).Error
	return count, err
}
