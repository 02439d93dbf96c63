package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
)

// FeedHandler shows random posts
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository // To render the author line
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(r bot.Registry) {
	r.Command("feed", h.ShowRandomPost)
	r.Menu(MenuFeed, h.ShowRandomPost)
	r.Action(bot.ActionFeed, h.ShowRandomPost)
}

// ShowRandomPost sends one uniformly drawn post with its like and profile buttons
func (h *FeedHandler) ShowRandomPost(ctx context.Context, c *bot.Context) error {
	post, err := h.postRepository.GetRandomPost(ctx)
	if err != nil {
		return err
	}
	if post == nil {
		return c.Reply(ctx, bot.Message{Text: msgNoPosts})
	}

	author, err := h.userRepository.GetUserByID(ctx, post.AuthorID)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		return err
	}
	return c.Reply(ctx, bot.Message{
		Text:     renderPostCard(post, author),
		Keyboard: postKeyboard(post),
	})
}

func renderPostCard(post *models.Post, author *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Post #%s\n\n", post.ShortID())
	fmt.Fprintf(&b, "%s\n\n", post.Text)
	if author != nil {
		fmt.Fprintf(&b, "👤: %s (%s)\n", author.FirstName, author.Handle(unknownUsername))
	} else {
		fmt.Fprintf(&b, "👤: %s\n", unknownUsername)
	}
	fmt.Fprintf(&b, "📅: %s", post.CreatedAt.Format(dateLayout))
	return b.String()
}

func postKeyboard(post *models.Post) bot.Keyboard {
	return bot.Keyboard{
		{{Label: fmt.Sprintf("❤️ %d", post.Likes), Action: bot.LikePost(post.ID)}},
		{{Label: "👤 Go to profile", Action: bot.ViewProfile(post.AuthorID)}},
	}
}
