package handlers

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/repositories"
)

// FollowHandler handles subscribe and unsubscribe buttons
type FollowHandler struct {
	subscriptionRepository repositories.SubscriptionRepository
	userRepository         repositories.UserRepository
	profiles               *ProfileHandler // To redraw the profile after a change
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(subRepo repositories.SubscriptionRepository, userRepo repositories.UserRepository, profiles *ProfileHandler) *FollowHandler {
	return &FollowHandler{
		subscriptionRepository: subRepo,
		userRepository:         userRepo,
		profiles:               profiles,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(r bot.Registry) {
	r.Action(bot.ActionSubscribe, h.Subscribe)
	r.Action(bot.ActionUnsubscribe, h.Unsubscribe)
}

// Subscribe follows the profile owner and redraws the profile
func (h *FollowHandler) Subscribe(ctx context.Context, c *bot.Context) error {
	target, err := h.userRepository.GetUserByID(ctx, c.Action.UserID)
	if err != nil {
		return err
	}
	if err := h.subscriptionRepository.Subscribe(ctx, c.User.UserID, target.UserID); err != nil {
		return err
	}
	if err := c.Notify(ctx, msgSubscribed); err != nil {
		return err
	}
	return h.profiles.Show(ctx, c, target)
}

// Unsubscribe removes the edge, whether or not it existed, and redraws the profile
func (h *FollowHandler) Unsubscribe(ctx context.Context, c *bot.Context) error {
	target, err := h.userRepository.GetUserByID(ctx, c.Action.UserID)
	if err != nil {
		return err
	}
	if err := h.subscriptionRepository.Unsubscribe(ctx, c.User.UserID, target.UserID); err != nil {
		return err
	}
	if err := c.Notify(ctx, msgUnsubscribed); err != nil {
		return err
	}
	return h.profiles.Show(ctx, c, target)
}
