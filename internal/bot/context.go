package bot

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/models"
)

// Context carries one update through the handler chain
type Context struct {
	Responder
	Update *Update
	User   *models.User
	Action Action

	notified bool
}

// NewContext creates a Context for an update and the registered sender
func NewContext(update *Update, user *models.User, responder Responder) *Context {
	return &Context{Responder: responder, Update: update, User: user}
}

// Notify records that the update has been acknowledged
func (c *Context) Notify(ctx context.Context, text string) error {
	c.notified = true
	return c.Responder.Notify(ctx, text)
}

// Notified reports whether a notice was already shown for this update
func (c *Context) Notified() bool {
	return c.notified
}

// IsAction reports whether the update is a button press
func (c *Context) IsAction() bool {
	return c.Update.Kind == KindAction
}

// HandlerFunc handles one update
type HandlerFunc func(ctx context.Context, c *Context) error

// MiddlewareFunc wraps a HandlerFunc
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// InputKind is the kind of input a conversation state handler receives
type InputKind int

const (
	InputText InputKind = iota
	InputCommand
	InputOther
)

// Registry is where handlers register the updates they serve
type Registry interface {
	Command(name string, h HandlerFunc)
	Menu(label string, h HandlerFunc)
	Action(kind ActionKind, h HandlerFunc)
	// State registers the handler for an input kind while a conversation is in state.
	// State handlers take precedence over commands and menu shortcuts; actions are unaffected.
	State(state string, input InputKind, h HandlerFunc)
	Fallback(h HandlerFunc)
}
