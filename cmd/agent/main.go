// The agent drains the device-local contribution queue into the backend.
// It runs either as a daemon that watches connectivity and syncs on each
// offline-to-online transition, or as a one-shot pass with -sync-once.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mranger2024/plasticwatcha/internal/config"
	"github.com/Mranger2024/plasticwatcha/internal/offline"
	"github.com/Mranger2024/plasticwatcha/pkg/database"
	"github.com/Mranger2024/plasticwatcha/pkg/formatting"
	"github.com/Mranger2024/plasticwatcha/pkg/storage"
)

func main() {
	syncOnce := flag.Bool("sync-once", false, "Run a single sync pass and exit")
	flag.Parse()

	cfg, err := config.LoadAgent()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("module", "agent")

	queue, err := offline.Open(cfg.Agent.QueuePath)
	if err != nil {
		log.Fatal("queue open failed:", err)
	}
	defer queue.Close()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		log.Fatal("database init failed:", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		log.Fatal("storage init failed:", err)
	}

	remote := offline.NewRemote(db.Connection(), store, logger)
	syncer := offline.NewSyncer(queue, remote, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logQueueState(ctx, queue, logger)

	if *syncOnce {
		result, err := syncer.SyncQueue(ctx)
		if err != nil {
			log.Fatal("sync pass failed:", err)
		}

		logger.Info(
			"sync pass finished",
			"total", result.Total,
			"completed", result.Completed,
			"failed", result.Failed,
		)

		if result.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	logger.Info(
		"agent watching connectivity",
		"queuePath", cfg.Agent.QueuePath,
		"interval", cfg.Agent.SyncInterval,
	)

	syncer.Watch(ctx, cfg.Agent.SyncIntervalDuration())

	logger.Info("agent stopped")
}

func logQueueState(ctx context.Context, queue *offline.Queue, logger *slog.Logger) {
	stats, err := queue.Stats(ctx)
	if err != nil {
		logger.Error("queue stats failed", "error", err)
		return
	}

	size, err := queue.EstimatedSizeBytes(ctx)
	if err != nil {
		logger.Error("queue size failed", "error", err)
		return
	}

	logger.Info(
		"queue state",
		"total", stats.Total,
		"pending", stats.Pending,
		"failed", stats.Failed,
		"size", formatting.FormatBytes(size, 1),
	)
}
