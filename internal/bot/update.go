package bot

import (
	"context"

	"github.com/anonto42/miniblog-bot/internal/models"
)

// UpdateKind classifies an inbound update
type UpdateKind int

const (
	KindText    UpdateKind = iota // plain text message
	KindCommand                   // /command [args]
	KindMessage                   // any non-text message: photo, sticker, voice...
	KindAction                    // inline button press
)

func (k UpdateKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	case KindMessage:
		return "message"
	case KindAction:
		return "action"
	}
	return "unknown"
}

// Update is one inbound event, independent of the chat transport
type Update struct {
	Kind           UpdateKind
	ConversationID int64
	From           models.Identity
	Command        string
	Args           string
	Text           string
	Data           string // raw button payload
}

// SessionKey names the wizard session of the sender in this conversation
func (u *Update) SessionKey() string {
	return models.SessionKey(u.From.ID, u.ConversationID)
}

// Button is an inline button bound to an action
type Button struct {
	Label  string
	Action Action
}

// Keyboard is a grid of inline buttons attached to a message
type Keyboard [][]Button

// Menu is a persistent reply keyboard made of text shortcuts
type Menu [][]string

// Message is an outbound text with optional markup
type Message struct {
	Text     string
	Keyboard Keyboard
	Menu     Menu
}

// Responder sends the bot's answers back to the conversation an update came from
type Responder interface {
	// Reply sends a new message
	Reply(ctx context.Context, msg Message) error
	// Edit replaces the text and keyboard of the message whose button was pressed.
	// Without such a message it behaves like Reply.
	Edit(ctx context.Context, msg Message) error
	// EditKeyboard replaces only the keyboard of the message whose button was pressed
	EditKeyboard(ctx context.Context, kb Keyboard) error
	// Notify shows a transient notice for a button press, or replies for other updates
	Notify(ctx context.Context, text string) error
}
