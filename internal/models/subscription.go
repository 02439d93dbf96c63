package models

import "time"

// Subscription is a directed follow edge from SubscriberID to TargetID
type Subscription struct {
	SubscriberID int64     `json:"subscriber_id" bson:"subscriberId" gorm:"primaryKey;autoIncrement:false"`
	TargetID     int64     `json:"target_id" bson:"targetId" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
}

// ValidateSubscription rejects edges a user may not create
func ValidateSubscription(subscriberID, targetID int64) error {
	if subscriberID == targetID {
		return ErrSelfSubscription
	}
	return nil
}
