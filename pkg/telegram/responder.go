package telegram

import (
	"context"
	"strings"

	"github.com/anonto42/miniblog-bot/internal/bot"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the responder uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Responder answers one update through the Bot API
type Responder struct {
	sender     Sender
	chatID     int64
	messageID  int    // message carrying the pressed button
	callbackID string // set for button presses
}

// NewResponder creates the Responder for update u
func NewResponder(sender Sender, u tgbotapi.Update) *Responder {
	r := &Responder{sender: sender}
	switch {
	case u.CallbackQuery != nil:
		r.callbackID = u.CallbackQuery.ID
		if msg := u.CallbackQuery.Message; msg != nil && msg.Chat != nil {
			r.chatID = msg.Chat.ID
			r.messageID = msg.MessageID
		} else if u.CallbackQuery.From != nil {
			r.chatID = u.CallbackQuery.From.ID
		}
	case u.Message != nil && u.Message.Chat != nil:
		r.chatID = u.Message.Chat.ID
	}
	return r
}

func (r *Responder) Reply(ctx context.Context, msg bot.Message) error {
	out := tgbotapi.NewMessage(r.chatID, msg.Text)
	switch {
	case len(msg.Keyboard) > 0:
		out.ReplyMarkup = inlineKeyboard(msg.Keyboard)
	case len(msg.Menu) > 0:
		out.ReplyMarkup = replyKeyboard(msg.Menu)
	}
	_, err := r.sender.Send(out)
	return err
}

func (r *Responder) Edit(ctx context.Context, msg bot.Message) error {
	if r.messageID == 0 {
		return r.Reply(ctx, msg)
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(r.chatID, r.messageID, msg.Text, inlineKeyboard(msg.Keyboard))
	return ignoreNotModified(r.request(edit))
}

func (r *Responder) EditKeyboard(ctx context.Context, kb bot.Keyboard) error {
	if r.messageID == 0 {
		return nil
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(r.chatID, r.messageID, inlineKeyboard(kb))
	return ignoreNotModified(r.request(edit))
}

func (r *Responder) Notify(ctx context.Context, text string) error {
	if r.callbackID != "" {
		return r.request(tgbotapi.NewCallback(r.callbackID, text))
	}
	if text == "" {
		return nil
	}
	return r.Reply(ctx, bot.Message{Text: text})
}

func (r *Responder) request(c tgbotapi.Chattable) error {
	_, err := r.sender.Request(c)
	return err
}

// ignoreNotModified drops the error Telegram returns when an edit changes nothing
func ignoreNotModified(err error) error {
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func inlineKeyboard(kb bot.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func replyKeyboard(menu bot.Menu) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(menu))
	for _, row := range menu {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, buttons)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
