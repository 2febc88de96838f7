package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sif-medellin/sifgpt/internal/api"
	"github.com/sif-medellin/sifgpt/internal/caseid"
	"github.com/sif-medellin/sifgpt/internal/classifier"
	"github.com/sif-medellin/sifgpt/internal/config"
	"github.com/sif-medellin/sifgpt/internal/conversation"
	"github.com/sif-medellin/sifgpt/internal/events"
	"github.com/sif-medellin/sifgpt/internal/historico"
	"github.com/sif-medellin/sifgpt/internal/intake"
	"github.com/sif-medellin/sifgpt/internal/openai"
	"github.com/sif-medellin/sifgpt/internal/responder"
	"github.com/sif-medellin/sifgpt/internal/transcript"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("sifgpt starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sessions (optional Postgres; memory store when no DATABASE_URL)
	var sessions conversation.Store = conversation.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		pg, err := conversation.NewPGStore(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		sessions = pg
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, sessions held in memory only")
	}

	// OpenAI client, shared by both oracles and the transcriber
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	// Histórico archive
	archive, err := historico.OpenExcel(cfg.HistoricoPath, slog.Default())
	if err != nil {
		slog.Error("failed to load archive workbook", "path", cfg.HistoricoPath, "error", err)
		os.Exit(1)
	}
	engine := historico.New(archive, slog.Default())
	slog.Info("archive ready", "records", engine.Count())

	// NATS events (optional, the service runs without them)
	var eventsClient *events.Client
	if cfg.NatsURL != "" {
		c, err := events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		eventsClient = c
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without intake events")
	}
	var sink intake.EventSink
	if eventsClient != nil {
		sink = eventsClient
	}

	// Intake pipeline
	router := intake.New(
		transcript.New(),
		caseid.New(),
		sessions,
		classifier.New(llm, slog.Default()),
		responder.New(llm, slog.Default()),
		engine,
		sink,
		slog.Default(),
	)

	// HTTP API
	srv := api.NewServer(cfg.Port, router, engine, llm, sessions, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if eventsClient != nil {
		if err := eventsClient.Registered(cfg.Port); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("sifgpt ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("sifgpt stopped")
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
