// Package bootstrap assembles the synthesis runner shared by the CLI and the
// queue worker.
package bootstrap

import (
	"context"
	"log/slog"

	"github.com/nikhilbhutani/clonetts/internal/cache"
	"github.com/nikhilbhutani/clonetts/internal/config"
	"github.com/nikhilbhutani/clonetts/internal/database"
	"github.com/nikhilbhutani/clonetts/internal/history"
	"github.com/nikhilbhutani/clonetts/internal/tts"
	"github.com/nikhilbhutani/clonetts/internal/workflow"
)

// NewRunner wires the configured backend with the optional Redis cache and
// Postgres history. Optional components that cannot be reached are skipped
// with a warning. The returned cleanup func is never nil.
func NewRunner(ctx context.Context, cfg *config.Config) (*workflow.Runner, func(), error) {
	synth, err := tts.NewSynthesizer(cfg.TTS)
	if err != nil {
		return nil, func() {}, err
	}

	var (
		opts    []workflow.Option
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.CacheEnabled() {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, running without audio cache", "addr", cfg.Redis.Addr, "error", err)
		} else {
			closers = append(closers, func() { client.Close() })
			opts = append(opts, workflow.WithCache(cache.NewAudioCache(client, cfg.Cache.TTL)))
		}
	}

	if cfg.HistoryEnabled() {
		pool, err := database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, run history disabled", "error", err)
		} else if err := database.RunMigrations(ctx, pool, cfg.Database.MigrationsPath); err != nil {
			slog.Warn("migrations failed, run history disabled", "error", err)
			pool.Close()
		} else {
			closers = append(closers, pool.Close)
			opts = append(opts, workflow.WithRecorder(history.NewService(pool)))
		}
	}

	return workflow.NewRunner(synth, opts...), cleanup, nil
}
