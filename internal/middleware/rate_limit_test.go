package middleware

import (
	"context"
	"testing"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"github.com/anonto42/miniblog-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noticeRecorder struct {
	notices []string
}

func (r *noticeRecorder) Reply(ctx context.Context, msg bot.Message) error        { return nil }
func (r *noticeRecorder) Edit(ctx context.Context, msg bot.Message) error         { return nil }
func (r *noticeRecorder) EditKeyboard(ctx context.Context, kb bot.Keyboard) error { return nil }
func (r *noticeRecorder) Notify(ctx context.Context, text string) error {
	r.notices = append(r.notices, text)
	return nil
}

func TestActionLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewActionLimiter(ctx, 0.001, 2)
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1))

	// Users have separate buckets
	assert.True(t, l.Allow(2))
}

func TestActionLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewActionLimiter(ctx, 0.001, 1)
	calls := 0
	h := l.Middleware(func(ctx context.Context, c *bot.Context) error {
		calls++
		return nil
	})

	from := models.Identity{ID: 9}
	rec := &noticeRecorder{}
	press := func() *bot.Context {
		return bot.NewContext(&bot.Update{Kind: bot.KindAction, From: from, Data: "feed"}, nil, rec)
	}

	require.NoError(t, h(ctx, press()))
	c := press()
	require.NoError(t, h(ctx, c))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{ThrottledNotice}, rec.notices)
	assert.True(t, c.Notified())

	// Messages are never throttled
	for i := 0; i < 3; i++ {
		require.NoError(t, h(ctx, bot.NewContext(&bot.Update{Kind: bot.KindText, From: from, Text: "hi"}, nil, rec)))
	}
	assert.Equal(t, 4, calls)
}
