package handlers

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/cache"
	"github.com/anonto42/miniblog-bot/internal/wizard"
)

// PostHandler runs the post composition wizard
type PostHandler struct {
	wizard *wizard.Wizard
	stats  *cache.StatsCache
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(w *wizard.Wizard, statsCache *cache.StatsCache) *PostHandler {
	return &PostHandler{wizard: w, stats: statsCache}
}

// RegisterPostRoutes registers the wizard entry points and its state handlers
func (h *PostHandler) RegisterPostRoutes(r bot.Registry) {
	r.Command("post", h.NewPost)
	r.Menu(MenuPost, h.NewPost)
	r.Action(bot.ActionCreatePost, h.NewPost)
	r.Command("cancel", h.Cancel)

	r.State(wizard.StateAwaitingPostText, bot.InputText, h.SubmitText)
	r.State(wizard.StateAwaitingPostText, bot.InputCommand, h.CommandWhileComposing)
	r.State(wizard.StateAwaitingPostText, bot.InputOther, h.RejectNonText)
}

// NewPost enters the wizard and asks for the post text
func (h *PostHandler) NewPost(ctx context.Context, c *bot.Context) error {
	if err := h.wizard.Begin(ctx, c.Update.SessionKey()); err != nil {
		return err
	}
	if c.IsAction() {
		if err := c.Notify(ctx, msgComposeMode); err != nil {
			return err
		}
	}
	return c.Reply(ctx, bot.Message{Text: msgAskPostText})
}

// SubmitText publishes the text as a post. Invalid text keeps the wizard open.
func (h *PostHandler) SubmitText(ctx context.Context, c *bot.Context) error {
	if _, err := h.wizard.Submit(ctx, c.Update.SessionKey(), c.User.UserID, c.Update.Text); err != nil {
		return err
	}
	h.stats.Invalidate()
	return c.Reply(ctx, bot.Message{Text: msgPostCreated, Menu: MainMenu()})
}

// RejectNonText answers photos, stickers and other non-text input
func (h *PostHandler) RejectNonText(ctx context.Context, c *bot.Context) error {
	return c.Reply(ctx, bot.Message{Text: msgTextOnly})
}

// CommandWhileComposing handles /cancel inside the wizard and reminds the user otherwise
func (h *PostHandler) CommandWhileComposing(ctx context.Context, c *bot.Context) error {
	if c.Update.Kind == bot.KindCommand && c.Update.Command == "cancel" {
		return h.Cancel(ctx, c)
	}
	return c.Reply(ctx, bot.Message{Text: msgStillComposing})
}

// Cancel leaves the wizard
func (h *PostHandler) Cancel(ctx context.Context, c *bot.Context) error {
	cancelled, err := h.wizard.Cancel(ctx, c.Update.SessionKey())
	if err != nil {
		return err
	}
	if !cancelled {
		return c.Reply(ctx, bot.Message{Text: msgNothingToCancel})
	}
	return c.Reply(ctx, bot.Message{Text: msgPostCancelled, Menu: MainMenu()})
}
