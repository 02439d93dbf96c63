package models

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrAlreadyLiked      = errors.New("post already liked by this user")
	ErrAlreadySubscribed = errors.New("already subscribed to this user")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrInvalidAction     = errors.New("invalid action")
)
