package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
)

// ProfileHandler renders user profiles
type ProfileHandler struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	subscriptionRepository repositories.SubscriptionRepository
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository, subRepo repositories.SubscriptionRepository) *ProfileHandler {
	return &ProfileHandler{
		userRepository:         userRepo,
		postRepository:         postRepo,
		subscriptionRepository: subRepo,
	}
}

// RegisterProfileRoutes registers profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(r bot.Registry) {
	r.Command("profile", h.GetProfile)
	r.Menu(MenuProfile, h.GetProfile)
	r.Command("user", h.GetUser)
	r.Action(bot.ActionProfile, h.ViewProfile)
}

// GetProfile shows the sender's own profile
func (h *ProfileHandler) GetProfile(ctx context.Context, c *bot.Context) error {
	return h.Show(ctx, c, c.User)
}

// GetUser shows a profile looked up by username ("/user @name") or numeric id ("/user 42")
func (h *ProfileHandler) GetUser(ctx context.Context, c *bot.Context) error {
	query := strings.TrimPrefix(strings.TrimSpace(c.Update.Args), "@")
	if fields := strings.Fields(query); len(fields) > 0 {
		query = fields[0]
	}
	if query == "" {
		return c.Reply(ctx, bot.Message{Text: msgUserUsage})
	}

	var target *models.User
	var err error
	if id, parseErr := strconv.ParseInt(query, 10, 64); parseErr == nil {
		target, err = h.userRepository.GetUserByID(ctx, id)
	} else {
		target, err = h.userRepository.GetUserByUsername(ctx, query)
	}
	if err != nil {
		return err
	}
	return h.Show(ctx, c, target)
}

// ViewProfile shows the profile behind a "go to profile" button
func (h *ProfileHandler) ViewProfile(ctx context.Context, c *bot.Context) error {
	target, err := h.userRepository.GetUserByID(ctx, c.Action.UserID)
	if err != nil {
		return err
	}
	return h.Show(ctx, c, target)
}

// Show renders the profile of target as seen by the sender. Button presses edit the
// message in place; commands send a new one.
func (h *ProfileHandler) Show(ctx context.Context, c *bot.Context, target *models.User) error {
	subscribers, err := h.subscriptionRepository.CountSubscribers(ctx, target.UserID)
	if err != nil {
		return err
	}
	subscriptions, err := h.subscriptionRepository.CountSubscriptions(ctx, target.UserID)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", target.DisplayName())
	fmt.Fprintf(&b, "📧 %s\n\n", target.Handle(unknownUsername))
	b.WriteString("📊 Statistics:\n")
	fmt.Fprintf(&b, "📝 Posts: %d\n", target.PostCount)
	fmt.Fprintf(&b, "👥 Subscribers: %d\n", subscribers)
	fmt.Fprintf(&b, "📋 Subscriptions: %d\n\n", subscriptions)
	fmt.Fprintf(&b, "📅 Joined: %s", target.CreatedAt.Format(dateLayout))

	var keyboard bot.Keyboard
	own := target.UserID == c.User.UserID
	if own {
		posts, err := h.postRepository.GetPostsByUserID(ctx, target.UserID, recentPostsLimit, true)
		if err != nil {
			return err
		}
		if len(posts) > 0 {
			b.WriteString("\n\n📝 Recent posts:\n")
			for i, post := range posts {
				fmt.Fprintf(&b, "%d. %s\n", i+1, preview(post.Text))
				fmt.Fprintf(&b, "   ❤️ %d | 📅 %s\n\n", post.Likes, post.CreatedAt.Format(dateLayout))
			}
			keyboard = append(keyboard, []bot.Button{{Label: "🔄 Create new post", Action: bot.CreatePost()}})
		}
	} else {
		subscribed, err := h.subscriptionRepository.IsSubscribed(ctx, c.User.UserID, target.UserID)
		if err != nil {
			return err
		}
		if subscribed {
			keyboard = append(keyboard, []bot.Button{{Label: "❌ Unsubscribe", Action: bot.Unsubscribe(target.UserID)}})
		} else {
			keyboard = append(keyboard, []bot.Button{{Label: "✅ Subscribe", Action: bot.Subscribe(target.UserID)}})
		}
	}
	keyboard = append(keyboard, []bot.Button{{Label: "📰 Back to feed", Action: bot.BackToFeed()}})

	msg := bot.Message{Text: strings.TrimRight(b.String(), "\n"), Keyboard: keyboard}
	if c.IsAction() {
		return c.Edit(ctx, msg)
	}
	return c.Reply(ctx, msg)
}

// preview cuts text to previewLength runes
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
