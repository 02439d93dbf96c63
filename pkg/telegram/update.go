package telegram

import (
	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ToUpdate converts a Bot API update. It reports false for updates the bot does not route,
// such as edited messages or channel posts.
func ToUpdate(u tgbotapi.Update) (*bot.Update, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil {
			return nil, false
		}
		conversationID := cq.From.ID
		if cq.Message != nil && cq.Message.Chat != nil {
			conversationID = cq.Message.Chat.ID
		}
		return &bot.Update{
			Kind:           bot.KindAction,
			ConversationID: conversationID,
			From:           identity(cq.From),
			Data:           cq.Data,
		}, true
	}

	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil, false
	}

	update := &bot.Update{
		ConversationID: msg.Chat.ID,
		From:           identity(msg.From),
		Text:           msg.Text,
	}
	switch {
	case msg.IsCommand():
		update.Kind = bot.KindCommand
		update.Command = msg.Command()
		update.Args = msg.CommandArguments()
	case msg.Text != "":
		update.Kind = bot.KindText
	default:
		update.Kind = bot.KindMessage
	}
	return update, true
}

func identity(u *tgbotapi.User) models.Identity {
	return models.Identity{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
