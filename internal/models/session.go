package models

import (
	"fmt"
	"time"
)

// Session holds the wizard state of one identity inside one chat
type Session struct {
	Key       string    `bson:"_id" gorm:"column:session_key;primaryKey;size:64"`
	State     string    `bson:"state" gorm:"not null"`
	UpdatedAt time.Time `bson:"updatedAt"`
	ExpiresAt time.Time `bson:"expiresAt" gorm:"index"`
}

// SessionKey identifies the wizard session of userID in chatID. Members of a
// group chat each get their own session.
func SessionKey(userID, chatID int64) string {
	return fmt.Sprintf("%d:%d", userID, chatID)
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
