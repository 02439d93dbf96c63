package router

import (
	"log"
	"time"

	"github.com/anonto42/miniblog-bot/internal/cache"
	"github.com/anonto42/miniblog-bot/internal/handlers"
	"github.com/anonto42/miniblog-bot/internal/middleware"
	"github.com/anonto42/miniblog-bot/internal/repositories"
	"github.com/anonto42/miniblog-bot/internal/wizard"
	"github.com/labstack/echo/v4"
)

// Options tunes the bot routes
type Options struct {
	WizardTimeout time.Duration
	StatsCacheTTL time.Duration
	ActionLimiter *middleware.ActionLimiter // nil disables throttling
}

// SetupBotRoutes builds the interaction router and injects the repositories into every handler
func SetupBotRoutes(repos *repositories.Repositories, opts Options) *Router {
	composer := wizard.New(repos.Sessions, repos.Posts, opts.WizardTimeout)
	statsCache := cache.New(opts.StatsCacheTTL)
	r := New(repos.Users, composer)
	if opts.ActionLimiter != nil {
		r.Use(opts.ActionLimiter.Middleware)
	}

	handlers.NewStartHandler().RegisterStartRoutes(r)
	handlers.NewPostHandler(composer, statsCache).RegisterPostRoutes(r)
	handlers.NewFeedHandler(repos.Posts, repos.Users).RegisterFeedRoutes(r)
	handlers.NewLikeHandler(repos.Posts, statsCache).RegisterLikeRoutes(r)

	profileHandler := handlers.NewProfileHandler(repos.Users, repos.Posts, repos.Subscriptions)
	profileHandler.RegisterProfileRoutes(r)
	handlers.NewFollowHandler(repos.Subscriptions, repos.Users, profileHandler).RegisterFollowRoutes(r)

	handlers.NewStatsHandler(repos.Users, repos.Posts, statsCache).RegisterStatsRoutes(r)

	log.Println("Bot routes configured.")
	return r
}

// SetupRoutes configures the HTTP routes. webhook is nil when the bot polls for updates.
func SetupRoutes(e *echo.Echo, webhook *handlers.WebhookHandler, webhookPath, webhookSecret string) {
	e.GET("/health", handlers.HealthCheck)
	e.GET("/", handlers.Root)

	if webhook != nil {
		webhook.RegisterWebhookRoutes(e, webhookPath, middleware.WebhookSecretMiddleware(webhookSecret))
		log.Printf("Webhook route configured on %s.", webhookPath)
	}
}
