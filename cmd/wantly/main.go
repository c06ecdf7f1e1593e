package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"wantly/internal/api"
	"wantly/internal/config"
	"wantly/internal/engine"
	"wantly/internal/handlers"
	"wantly/internal/metrics"
	"wantly/internal/repository/postgres"
	"wantly/internal/scraper"
	"wantly/internal/telegram"
	"wantly/pkg/logger"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting Wantly...")

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Day-boundary timezone policy
	loc := time.Local
	if cfg.DayKeyTimezone == "utc" {
		loc = time.UTC
	}

	// Engine and collaborators
	m := metrics.New(prometheus.DefaultRegisterer)
	repo := postgres.NewSnapshotRepository(db.DB)
	clock := engine.NewSystemClock(loc)

	eng := engine.New(engine.Params{
		MaxDailyPoints:    cfg.MaxDailyPoints,
		HotThreshold:      cfg.HotThreshold,
		TrendingThreshold: cfg.TrendingThreshold,
		TrendWindowDays:   cfg.TrendWindowDays,
		FreezeCooldown:    cfg.FreezeCooldown,
	}, clock, repo, l, m)
	defer eng.Close()

	sc := scraper.New(nil, l)

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))

	// Wishlist handlers
	bot.RegisterCommand("want", handlers.NewWantHandler(eng, sc, l))
	bot.RegisterCommand("list", handlers.NewListHandler(eng, l))
	bot.RegisterCommand("drop", handlers.NewDropHandler(eng, l))
	bot.RegisterCommand("bought", handlers.NewBoughtHandler(eng, l))

	// Voting handlers
	bot.RegisterCommand("up", handlers.NewUpvoteHandler(eng, l))
	bot.RegisterCommand("down", handlers.NewDownvoteHandler(eng, l))
	bot.RegisterCommand("budget", handlers.NewBudgetHandler(eng, l))
	bot.RegisterCallback("vote", handlers.NewVoteCallbackHandler(eng, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Start HTTP API (includes /metrics)
	apiServer := api.NewServer(eng, sc, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Start Telegram bot polling
	go func() {
		if err := bot.Start(ctx); err != nil {
			l.Errorf("Bot error: %v", err)
		}
	}()

	l.Info("Wantly started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("Wantly stopped")
}
