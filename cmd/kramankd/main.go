package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidhan-archive/kramank/internal/api"
	"github.com/vidhan-archive/kramank/internal/classify"
	"github.com/vidhan-archive/kramank/internal/config"
	"github.com/vidhan-archive/kramank/internal/events"
	"github.com/vidhan-archive/kramank/internal/extract"
	"github.com/vidhan-archive/kramank/internal/match"
	"github.com/vidhan-archive/kramank/internal/memory"
	"github.com/vidhan-archive/kramank/internal/openrouter"
	"github.com/vidhan-archive/kramank/internal/processor"
	"github.com/vidhan-archive/kramank/internal/segment"
	"github.com/vidhan-archive/kramank/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("kramankd starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
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
	slog.Info("database connected")

	// OpenRouter client
	if cfg.OpenRouterAPIKey == "" {
		slog.Error("OPENROUTER_API_KEY is required")
		os.Exit(1)
	}
	llm := openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	if cfg.OpenRouterBase != "" {
		llm.SetBaseURL(cfg.OpenRouterBase)
	}
	slog.Info("openrouter client ready", "model", cfg.OpenRouterModel)

	// NATS
	eventsClient, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventsClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Extraction memory in JetStream KV
	mem, err := memory.NewNatsKV(eventsClient.Conn(), cfg.MemoryBucket, cfg.MemoryTTL)
	if err != nil {
		slog.Error("failed to open memory bucket", "bucket", cfg.MemoryBucket, "error", err)
		os.Exit(1)
	}

	// Extractors
	opts := extract.DefaultOptions()
	opts.ChunkSize = cfg.ChunkSize
	opts.MaxRetries = cfg.MaxRetries
	opts.RetryDelay = cfg.RetryDelay
	opts.PaceDelay = cfg.RateLimitDelay
	memberExtractor := extract.NewMemberExtractor(llm, mem, opts, slog.Default())
	resolutionExtractor := extract.NewResolutionExtractor(llm, mem, opts, slog.Default())
	debateFieldExtractor := extract.NewDebateFieldExtractor(llm, mem, opts, slog.Default())

	indexOpts := opts
	indexOpts.ChunkSize = cfg.IndexChunkSize
	indexExtractor := extract.NewIndexExtractor(llm, mem, indexOpts, slog.Default())

	// Segmentation
	matcher := match.New(match.DefaultOptions(), slog.Default())
	segmenter := segment.New(matcher, slog.Default())
	classifier := classify.New(classify.DefaultAnchors(), slog.Default())

	// Run state for redelivery dedup
	state, err := processor.LoadRunState(cfg.StatePath)
	if err != nil {
		slog.Error("failed to load run state", "path", cfg.StatePath, "error", err)
		os.Exit(1)
	}

	// Processor — the main pipeline
	proc := processor.New(
		db, eventsClient, classifier, segmenter,
		memberExtractor, resolutionExtractor, indexExtractor, debateFieldExtractor,
		cfg.DataDir, state, slog.Default(),
	)

	// Subscribe to OCR completion events
	if err := eventsClient.Subscribe(events.SubjectKramankStored, proc.HandleKramankStored); err != nil {
		slog.Error("failed to subscribe to stored events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, proc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := eventsClient.Publish("sabha.service.kramank.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("kramankd ready", "port", cfg.Port, "data_dir", cfg.DataDir)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("kramankd stopped")
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
