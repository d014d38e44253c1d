package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shamba-labs/mazao/internal/advisor"
	"github.com/shamba-labs/mazao/internal/api"
	"github.com/shamba-labs/mazao/internal/assistant"
	"github.com/shamba-labs/mazao/internal/auth"
	"github.com/shamba-labs/mazao/internal/config"
	"github.com/shamba-labs/mazao/internal/events"
	"github.com/shamba-labs/mazao/internal/gemini"
	"github.com/shamba-labs/mazao/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("mazao backend starting", "port", cfg.Port, "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database — losing persistence at startup is fatal.
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Gemini client
	if cfg.GeminiAPIKey == "" {
		slog.Error("GEMINI_API_KEY is required")
		os.Exit(1)
	}
	llm := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	slog.Info("gemini client ready", "model", cfg.GeminiModel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	tokens := auth.NewTokens(cfg.JWTSecret)

	// Events (optional — the backend works without NATS, just no event feed)
	var pub *events.Publisher
	if cfg.NatsURL != "" {
		pub, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without events")
	}

	farmAI := advisor.New(llm, advisor.DefaultOptions(), slog.Default())

	// Keep the interface nil when NATS is off; a typed nil would not be.
	var svcPub assistant.EventPublisher
	if pub != nil {
		svcPub = pub
	}
	chat := assistant.New(db, farmAI, svcPub, assistant.DefaultOptions(), slog.Default())

	srv := api.NewServer(cfg.Port, api.Deps{
		Users:     db,
		Inventory: db,
		Tasks:     db,
		Assistant: chat,
		Tokens:    tokens,
		Dev:       cfg.Development(),
		Logger:    slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if pub != nil {
		if err := pub.Publish(events.SubjectStarted, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish startup event", "error", err)
		}
	}

	slog.Info("mazao backend ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("mazao backend stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
