package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxPostLength matches the size limit of a single Telegram message
const MaxPostLength = 4096

// Post represents a short text post
type Post struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	AuthorID  int64     `json:"author_id" gorm:"not null;index:idx_posts_author_created"`
	Text      string    `json:"text" gorm:"not null"`
	Likes     int64     `json:"likes" gorm:"not null;default:0"`
	LikedBy   []int64   `json:"liked_by" gorm:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_posts_author_created"`
}

// PostLike is one entry of a post's like set in the SQL store
type PostLike struct {
	PostID    string `gorm:"primaryKey;size:36"`
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// CreatePostRequest is the validated input of the composition wizard
type CreatePostRequest struct {
	AuthorID int64  `validate:"required"`
	Text     string `validate:"required,max=4096"`
}

var validate = validator.New()

// NewCreatePostRequest trims the text and validates the request.
// Validation failures are reported as ErrInvalidInput.
func NewCreatePostRequest(authorID int64, text string) (*CreatePostRequest, error) {
	req := &CreatePostRequest{AuthorID: authorID, Text: strings.TrimSpace(text)}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return req, nil
}

// ShortID is the tail of the post id shown on post cards
func (p *Post) ShortID() string {
	if len(p.ID) <= 6 {
		return p.ID
	}
	return p.ID[len(p.ID)-6:]
}
