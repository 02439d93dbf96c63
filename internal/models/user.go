package models

import "time"

// User is a bot user, created on first contact and never deleted
type User struct {
	UserID    int64     `json:"user_id" bson:"userId" gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username,omitempty" bson:"username,omitempty" gorm:"index"`
	FirstName string    `json:"first_name" bson:"firstName"`
	LastName  string    `json:"last_name,omitempty" bson:"lastName,omitempty"`
	PostCount int64     `json:"post_count" bson:"postCount" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// Identity is the sender of an update as reported by the chat platform
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// DisplayName returns the first and last name joined, or the username if both are empty
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// Handle returns "@username", or the fallback when the user has no username
func (u *User) Handle(fallback string) string {
	if u.Username == "" {
		return "@" + fallback
	}
	return "@" + u.Username
}
