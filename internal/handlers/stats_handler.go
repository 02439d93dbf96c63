package handlers

import (
	"context"
	"fmt"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/cache"
	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
)

// StatsHandler reports aggregate counts
type StatsHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
	cache          *cache.StatsCache
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, statsCache *cache.StatsCache) *StatsHandler {
	return &StatsHandler{
		userRepository: userRepo,
		postRepository: postRepo,
		cache:          statsCache,
	}
}

// RegisterStatsRoutes registers stats-related routes
func (h *StatsHandler) RegisterStatsRoutes(r bot.Registry) {
	r.Command("stats", h.GetStats)
	r.Menu(MenuStats, h.GetStats)
}

// GetStats replies with total users, posts and likes
func (h *StatsHandler) GetStats(ctx context.Context, c *bot.Context) error {
	stats, err := h.cache.GetStats(func() (models.Stats, error) {
		return h.Collect(ctx)
	})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("📊 Bot statistics:\n\n👥 Total users: %d\n📝 Total posts: %d\n❤️ Total likes: %d",
		stats.TotalUsers, stats.TotalPosts, stats.TotalLikes)
	return c.Reply(ctx, bot.Message{Text: text})
}

// Collect reads the counts from the stores
func (h *StatsHandler) Collect(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	var err error

	if stats.TotalUsers, err = h.userRepository.CountUsers(ctx); err != nil {
		return models.Stats{}, err
	}
	if stats.TotalPosts, err = h.postRepository.CountPosts(ctx); err != nil {
		return models.Stats{}, err
	}
	if stats.TotalLikes, err = h.postRepository.SumLikes(ctx); err != nil {
		return models.Stats{}, err
	}
	return stats, nil
}
