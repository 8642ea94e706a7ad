package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tinoosan/tunegrab/api/v1"
	"github.com/tinoosan/tunegrab/internal/config"
	"github.com/tinoosan/tunegrab/internal/engine/ytdlp"
	"github.com/tinoosan/tunegrab/internal/history"
	"github.com/tinoosan/tunegrab/internal/logging"
	"github.com/tinoosan/tunegrab/internal/meta"
	"github.com/tinoosan/tunegrab/internal/metrics"
	"github.com/tinoosan/tunegrab/internal/registry"
	"github.com/tinoosan/tunegrab/internal/router"
	"github.com/tinoosan/tunegrab/internal/runner"
	"github.com/tinoosan/tunegrab/internal/stream"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(cfg.LogFile)
	metrics.Register()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		logger.Error("create download dir", "dir", cfg.DownloadDir, "err", err)
		os.Exit(1)
	}

	var store history.Store
	switch cfg.History {
	case "postgres":
		pg, err := history.NewPostgresStoreFromEnv()
		if err != nil {
			logger.Error("connect postgres", "err", err)
			os.Exit(1)
		}
		defer func() { _ = pg.Close() }()
		store = pg
	default:
		store = history.NewInMemStore()
	}

	reg := registry.New()
	stopJanitor := make(chan struct{})
	go reg.Janitor(30*time.Second, cfg.Retention, stopJanitor)

	fetcher := ytdlp.New(cfg.YTDLPPath, cfg.DownloadDir)
	extractor := meta.NewYTDLP(cfg.YTDLPPath, cfg.MetadataDir)
	run := runner.New(logger, reg, fetcher, store, extractor, runner.Options{
		Dir:           cfg.DownloadDir,
		MaxConcurrent: cfg.MaxConcurrent,
		FetchTimeout:  cfg.FetchTimeout,
	})
	streamer := stream.New(reg, cfg.PollInterval, cfg.TerminalGrace)

	downloads := v1.NewDownloads(logger, run, streamer, store, extractor, cfg.DownloadDir)

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router.New(logger, downloads),
		IdleTimeout: 120 * time.Second,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: progress streams stay open for the life of a task.
	}

	go func() {
		logger.Info("starting tunegrab API", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received terminate, graceful shutdown", "signal", sig.String())
	close(stopJanitor)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	if err := run.Shutdown(ctx); err != nil {
		logger.Error("runner shutdown", "err", err)
	}
}
