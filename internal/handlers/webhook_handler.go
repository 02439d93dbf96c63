package handlers

import (
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// UpdateSink accepts updates for asynchronous processing
type UpdateSink interface {
	HandleUpdate(update tgbotapi.Update) bool
}

// WebhookHandler receives Telegram updates over HTTP
type WebhookHandler struct {
	sink UpdateSink
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(sink UpdateSink) *WebhookHandler {
	return &WebhookHandler{sink: sink}
}

// RegisterWebhookRoutes registers the webhook endpoint on path
func (h *WebhookHandler) RegisterWebhookRoutes(e *echo.Echo, path string, m ...echo.MiddlewareFunc) {
	e.POST(path, h.ReceiveUpdate, m...)
}

// ReceiveUpdate queues the update and acknowledges it at once; the answer to the
// user is sent through the Bot API, not in this response.
func (h *WebhookHandler) ReceiveUpdate(c echo.Context) error {
	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}

	if !h.sink.HandleUpdate(update) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Bot is shutting down")
	}
	return c.NoContent(http.StatusOK)
}
