package handlers

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/cache"
	"github.com/anonto42/miniblog-bot/internal/repositories"
)

// LikeHandler handles like button presses
type LikeHandler struct {
	postRepository repositories.PostRepository
	stats          *cache.StatsCache
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(postRepo repositories.PostRepository, statsCache *cache.StatsCache) *LikeHandler {
	return &LikeHandler{postRepository: postRepo, stats: statsCache}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(r bot.Registry) {
	r.Action(bot.ActionLike, h.LikePost)
}

// LikePost records the like and redraws the button with the new count.
// Repeated likes and unknown posts come back as errors and leave the card untouched.
func (h *LikeHandler) LikePost(ctx context.Context, c *bot.Context) error {
	post, err := h.postRepository.LikePost(ctx, c.Action.PostID, c.User.UserID)
	if err != nil {
		return err
	}
	h.stats.Invalidate()

	if err := c.Notify(ctx, msgLikeAdded); err != nil {
		return err
	}
	return c.EditKeyboard(ctx, postKeyboard(post))
}
