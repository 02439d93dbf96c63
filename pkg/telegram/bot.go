package telegram

import (
	"context"
	"time"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/dispatch"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Router handles one converted update
type Router interface {
	Dispatch(ctx context.Context, update *bot.Update, responder bot.Responder)
}

// Bot queues Bot API updates per conversation and hands them to the router
type Bot struct {
	sender         Sender
	router         Router
	queue          *dispatch.Dispatcher
	handlerTimeout time.Duration
}

// NewBot creates a Bot. A non-positive handlerTimeout leaves handlers unbounded.
func NewBot(sender Sender, router Router, queue *dispatch.Dispatcher, handlerTimeout time.Duration) *Bot {
	return &Bot{
		sender:         sender,
		router:         router,
		queue:          queue,
		handlerTimeout: handlerTimeout,
	}
}

// HandleUpdate queues u behind earlier updates of the same conversation.
// Updates the bot does not route are accepted and dropped. It returns false
// only when the queue no longer accepts work.
func (b *Bot) HandleUpdate(u tgbotapi.Update) bool {
	update, ok := ToUpdate(u)
	if !ok {
		return true
	}
	responder := NewResponder(b.sender, u)

	return b.queue.Submit(update.ConversationID, func(ctx context.Context) {
		if b.handlerTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.handlerTimeout)
			defer cancel()
		}
		b.router.Dispatch(ctx, update, responder)
	})
}
