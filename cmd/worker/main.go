package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/clonetts/internal/bootstrap"
	"github.com/nikhilbhutani/clonetts/internal/config"
	"github.com/nikhilbhutani/clonetts/internal/queue"
	"github.com/nikhilbhutani/clonetts/internal/queue/workers"
	"github.com/nikhilbhutani/clonetts/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Addr == "" {
		slog.Error("worker requires REDIS_ADDR")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := bootstrap.NewRunner(ctx, cfg)
	if err != nil {
		slog.Error("failed to create synthesis runner", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := queue.NewServer(queue.RedisOpt(cfg.Redis), cfg.Worker.Concurrency)

	synthesisWorker := workers.NewSynthesisWorker(runner)
	if cfg.Worker.WebhookURL != "" {
		synthesisWorker.WithNotifier(webhook.NewNotifier(cfg.Worker.WebhookURL, cfg.Worker.WebhookSecret))
	}
	mux := queue.NewServeMux(asynq.HandlerFunc(synthesisWorker.ProcessTask))

	slog.Info("starting worker",
		"concurrency", cfg.Worker.Concurrency,
		"backend", runner.Backend(),
		"queue", queue.QueueSynthesis,
	)
	if err := srv.Run(mux); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
