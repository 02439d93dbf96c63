package models

// Stats is the aggregate summary shown by /stats
type Stats struct {
	TotalUsers int64 `json:"total_users"`
	TotalPosts int64 `json:"total_posts"`
	TotalLikes int64 `json:"total_likes"`
}
