package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkStub struct {
	accept  bool
	updates []tgbotapi.Update
}

func (s *sinkStub) HandleUpdate(update tgbotapi.Update) bool {
	s.updates = append(s.updates, update)
	return s.accept
}

func postUpdate(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_ReceiveUpdate(t *testing.T) {
	e := echo.New()
	sink := &sinkStub{accept: true}
	NewWebhookHandler(sink).RegisterWebhookRoutes(e, "/webhook")

	rec := postUpdate(e, `{"update_id":10,"message":{"message_id":1,"from":{"id":7,"first_name":"Alice"},"chat":{"id":7,"type":"private"},"date":1700000000,"text":"hello"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.updates, 1)
	assert.Equal(t, 10, sink.updates[0].UpdateID)
	require.NotNil(t, sink.updates[0].Message)
	assert.Equal(t, "hello", sink.updates[0].Message.Text)
}

func TestWebhookHandler_BadPayload(t *testing.T) {
	e := echo.New()
	sink := &sinkStub{accept: true}
	NewWebhookHandler(sink).RegisterWebhookRoutes(e, "/webhook")

	rec := postUpdate(e, `{"update_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sink.updates)
}

func TestWebhookHandler_ShuttingDown(t *testing.T) {
	e := echo.New()
	NewWebhookHandler(&sinkStub{accept: false}).RegisterWebhookRoutes(e, "/webhook")

	rec := postUpdate(e, `{"update_id":11}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/health", HealthCheck)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}
