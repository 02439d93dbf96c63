package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/miniblog-bot/internal/bot"
	"golang.org/x/time/rate"
)

// ThrottledNotice is shown when a user presses buttons faster than allowed
const ThrottledNotice = "Too many presses, please slow down."

// ActionLimiter throttles button presses per user
type ActionLimiter struct {
	limiters    map[int64]*limiterEntry
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewActionLimiter creates a limiter allowing perSecond presses with the given burst.
// Idle entries are dropped until ctx is done.
func NewActionLimiter(ctx context.Context, perSecond float64, burst int) *ActionLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &ActionLimiter{
		limiters:    make(map[int64]*limiterEntry),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		idleTimeout: time.Minute,
	}
	go l.cleanupLoop(ctx)
	return l
}

// Allow reports whether userID may press a button now
func (l *ActionLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[userID]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = entry
	}
	entry.lastUsed = time.Now()
	return entry.limiter.Allow()
}

// Middleware rejects button presses over the limit; other updates pass through
func (l *ActionLimiter) Middleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, c *bot.Context) error {
		if c.IsAction() && !l.Allow(c.Update.From.ID) {
			return c.Notify(ctx, ThrottledNotice)
		}
		return next(ctx, c)
	}
}

func (l *ActionLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (l *ActionLimiter) cleanupIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for userID, entry := range l.limiters {
		if now.Sub(entry.lastUsed) > l.idleTimeout {
			delete(l.limiters, userID)
		}
	}
}
