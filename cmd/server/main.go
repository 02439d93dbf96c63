package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/miniblog-bot/internal/dispatch"
	"github.com/anonto42/miniblog-bot/internal/handlers"
	"github.com/anonto42/miniblog-bot/internal/middleware"
	"github.com/anonto42/miniblog-bot/internal/router"
	"github.com/anonto42/miniblog-bot/pkg/config"
	"github.com/anonto42/miniblog-bot/pkg/telegram"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	api, err := telegram.InitBot(cfg.BotToken, cfg.Env == "debug")
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	// Setup bot routes and dependencies
	limiter := middleware.NewActionLimiter(ctx, cfg.ActionRate, cfg.ActionBurst)
	botRouter := router.SetupBotRoutes(db.Repositories(), router.Options{
		WizardTimeout: cfg.WizardTimeout,
		StatsCacheTTL: cfg.StatsCacheTTL,
		ActionLimiter: limiter,
	})

	// Queued updates still run after a shutdown signal
	queue := dispatch.New(context.Background())
	tgBot := telegram.NewBot(api, botRouter, queue, cfg.HandlerTimeout)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	config.SetupMiddleware(e)

	var webhook *handlers.WebhookHandler
	if cfg.UseWebhook() {
		if err := telegram.SetWebhook(api, cfg.WebhookURL(), cfg.WebhookSecret); err != nil {
			log.Fatalf("Failed to register webhook: %v", err)
		}
		webhook = handlers.NewWebhookHandler(tgBot)
	} else {
		if err := telegram.DeleteWebhook(api); err != nil {
			log.Fatalf("Failed to switch to long polling: %v", err)
		}
		go telegram.Poll(ctx, api, tgBot)
	}
	router.SetupRoutes(e, webhook, cfg.WebhookPath, cfg.WebhookSecret)

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	log.Printf("Draining updates for %d conversations...", queue.Pending())
	queue.Close()
	log.Println("All queued updates handled.")
}
