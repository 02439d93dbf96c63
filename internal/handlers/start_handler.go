package handlers

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/bot"
)

// StartHandler greets users and shows the main menu
type StartHandler struct{}

// NewStartHandler creates a new StartHandler
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// RegisterStartRoutes registers the greeting commands and the unmatched-text fallback
func (h *StartHandler) RegisterStartRoutes(r bot.Registry) {
	r.Command("start", h.Start)
	r.Command("help", h.Start)
	r.Fallback(h.Unknown)
}

// Start replies with the command list and the menu keyboard. Registration
// already happened in the router.
func (h *StartHandler) Start(ctx context.Context, c *bot.Context) error {
	return c.Reply(ctx, bot.Message{Text: msgWelcome, Menu: MainMenu()})
}

// Unknown answers text that matches no command or shortcut
func (h *StartHandler) Unknown(ctx context.Context, c *bot.Context) error {
	return c.Reply(ctx, bot.Message{Text: msgUnknownInput, Menu: MainMenu()})
}
