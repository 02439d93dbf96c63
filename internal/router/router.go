package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/handlers"
	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/anonto42/miniblog-bot/internal/repositories"
	"github.com/anonto42/miniblog-bot/internal/wizard"
)

// StateReader reports the wizard state stored under a session key
type StateReader interface {
	State(ctx context.Context, key string) (string, error)
}

// Router maps every inbound update to exactly one handler
type Router struct {
	users  repositories.UserRepository
	states StateReader

	commands      map[string]bot.HandlerFunc
	menus         map[string]bot.HandlerFunc
	actions       map[bot.ActionKind]bot.HandlerFunc
	stateHandlers map[string]map[bot.InputKind]bot.HandlerFunc
	fallback      bot.HandlerFunc
	middleware    []bot.MiddlewareFunc
}

// New creates a Router that registers senders in users and reads wizard state from states
func New(users repositories.UserRepository, states StateReader) *Router {
	return &Router{
		users:         users,
		states:        states,
		commands:      make(map[string]bot.HandlerFunc),
		menus:         make(map[string]bot.HandlerFunc),
		actions:       make(map[bot.ActionKind]bot.HandlerFunc),
		stateHandlers: make(map[string]map[bot.InputKind]bot.HandlerFunc),
	}
}

// Use appends middleware run around every handler
func (r *Router) Use(m ...bot.MiddlewareFunc) {
	r.middleware = append(r.middleware, m...)
}

func (r *Router) Command(name string, h bot.HandlerFunc) {
	r.commands[name] = h
}

func (r *Router) Menu(label string, h bot.HandlerFunc) {
	r.menus[label] = h
}

func (r *Router) Action(kind bot.ActionKind, h bot.HandlerFunc) {
	r.actions[kind] = h
}

func (r *Router) State(state string, input bot.InputKind, h bot.HandlerFunc) {
	if r.stateHandlers[state] == nil {
		r.stateHandlers[state] = make(map[bot.InputKind]bot.HandlerFunc)
	}
	r.stateHandlers[state][input] = h
}

func (r *Router) Fallback(h bot.HandlerFunc) {
	r.fallback = h
}

// Dispatch registers the sender, runs the matching handler and turns any failure,
// panics included, into a notice for the user.
func (r *Router) Dispatch(ctx context.Context, update *bot.Update, responder bot.Responder) {
	name := "register"
	c := bot.NewContext(update, nil, responder)

	defer func() {
		if rec := recover(); rec != nil {
			r.fail(ctx, c, name, fmt.Errorf("panic: %v", rec))
		}
	}()

	user, err := r.users.EnsureUser(ctx, update.From)
	if err != nil {
		r.handleError(ctx, c, name, err)
		return
	}
	c.User = user

	name, h, err := r.route(ctx, c)
	if err != nil {
		r.handleError(ctx, c, name, err)
		return
	}
	if h == nil {
		return
	}

	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	if err := h(ctx, c); err != nil {
		r.handleError(ctx, c, name, err)
		return
	}

	// Telegram keeps a spinner on the button until the press is answered.
	if c.IsAction() && !c.Notified() {
		if err := c.Notify(ctx, ""); err != nil {
			log.Printf("[ROUTER] failed to answer %s for conversation %d: %v", name, update.ConversationID, err)
		}
	}
}

func (r *Router) route(ctx context.Context, c *bot.Context) (string, bot.HandlerFunc, error) {
	u := c.Update

	if u.Kind == bot.KindAction {
		action, err := bot.DecodeAction(u.Data)
		if err != nil {
			return "action", nil, err
		}
		c.Action = action
		name := "action:" + string(action.Kind)
		h, ok := r.actions[action.Kind]
		if !ok {
			return name, nil, fmt.Errorf("%w: no handler for %s", models.ErrInvalidAction, action.Kind)
		}
		return name, h, nil
	}

	state, err := r.states.State(ctx, u.SessionKey())
	if err != nil {
		return "state", nil, err
	}
	if state != wizard.StateIdle {
		input := r.inputKind(u)
		if h, ok := r.stateHandlers[state][input]; ok {
			return fmt.Sprintf("state:%s:%d", state, input), h, nil
		}
	}

	switch u.Kind {
	case bot.KindCommand:
		if h, ok := r.commands[u.Command]; ok {
			return "command:" + u.Command, h, nil
		}
	case bot.KindText:
		if h, ok := r.menus[strings.TrimSpace(u.Text)]; ok {
			return "menu:" + strings.TrimSpace(u.Text), h, nil
		}
	}
	return "fallback", r.fallback, nil
}

// inputKind treats menu shortcuts like the commands they mirror
func (r *Router) inputKind(u *bot.Update) bot.InputKind {
	switch u.Kind {
	case bot.KindCommand:
		return bot.InputCommand
	case bot.KindText:
		if _, ok := r.menus[strings.TrimSpace(u.Text)]; ok {
			return bot.InputCommand
		}
		return bot.InputText
	}
	return bot.InputOther
}

func (r *Router) handleError(ctx context.Context, c *bot.Context, name string, err error) {
	notice, ok := noticeFor(err)
	if !ok {
		r.fail(ctx, c, name, err)
		return
	}
	if err := c.Notify(ctx, notice); err != nil {
		log.Printf("[ROUTER] failed to send notice from %s to conversation %d: %v", name, c.Update.ConversationID, err)
	}
}

func (r *Router) fail(ctx context.Context, c *bot.Context, name string, err error) {
	log.Printf("[ROUTER] handler %s failed for conversation %d (user %d): %v",
		name, c.Update.ConversationID, c.Update.From.ID, err)
	if err := c.Notify(ctx, handlers.NoticeGenericFailure); err != nil {
		log.Printf("[ROUTER] failed to send failure notice to conversation %d: %v", c.Update.ConversationID, err)
	}
}

func noticeFor(err error) (string, bool) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return handlers.NoticeInvalidInput, true
	case errors.Is(err, models.ErrUserNotFound):
		return handlers.NoticeUserNotFound, true
	case errors.Is(err, models.ErrPostNotFound):
		return handlers.NoticePostNotFound, true
	case errors.Is(err, models.ErrAlreadyLiked):
		return handlers.NoticeAlreadyLiked, true
	case errors.Is(err, models.ErrAlreadySubscribed):
		return handlers.NoticeAlreadySubscribed, true
	case errors.Is(err, models.ErrSelfSubscription):
		return handlers.NoticeSelfSubscription, true
	case errors.Is(err, models.ErrInvalidAction):
		return handlers.NoticeInvalidAction, true
	}
	return "", false
}
