package telegram

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/miniblog-bot/internal/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// allowedUpdates limits delivery to the update types the bot routes
const allowedUpdates = `["message","callback_query"]`

// InitBot authorizes the bot token against the Bot API
func InitBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error initializing telegram bot: %w", err)
	}
	api.Debug = debug

	log.Printf("Authorized on account @%s", api.Self.UserName)
	return api, nil
}

// SetWebhook points Telegram at url. Telegram echoes secret in the
// X-Telegram-Bot-Api-Secret-Token header of every delivery.
func SetWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", secret)
	params.AddNonEmpty("allowed_updates", allowedUpdates)

	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	log.Printf("Webhook set to %s", url)
	return nil
}

// DeleteWebhook switches the bot back to long polling
func DeleteWebhook(api *tgbotapi.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}

// Poll feeds updates from long polling into sink until ctx is done
func Poll(ctx context.Context, api *tgbotapi.BotAPI, sink handlers.UpdateSink) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	log.Println("Polling for updates...")

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if !sink.HandleUpdate(update) {
				api.StopReceivingUpdates()
				return
			}
		}
	}
}
