package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/internal/publisher"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
	"github.com/aquaman122/auto-report/pkg/storage"
	"github.com/aquaman122/auto-report/pkg/worker"
)

func main() {
	queueCfg := config.GetQueueConfig()
	dbCfg := config.GetDatabaseConfig()
	storageCfg := config.GetStorageConfig()
	publisherCfg := config.GetPublisherConfig()

	log, err := logger.NewLogger(
		logger.WithLevel("info"),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/worker.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !queueCfg.Enabled() {
		log.Error("REDIS_ADDR is not set, the worker has no queue to consume")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := store.New(ctx, dbCfg, log)
	if err != nil {
		log.Error("Failed to open store", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	statuses, err := queue.NewAsynqQueue(queueCfg)
	if err != nil {
		log.Error("Failed to connect redis", logger.Error(err))
		os.Exit(1)
	}
	defer statuses.Close()

	archive, err := storage.New(storageCfg, log)
	if err != nil {
		log.Error("Failed to open artifact archive", logger.Error(err))
		os.Exit(1)
	}

	workerCfg := &worker.Config{
		RedisAddr:   queueCfg.RedisAddr,
		RedisDB:     queueCfg.RedisDB,
		Concurrency: queueCfg.Concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	}

	publishWorker, err := worker.NewPublishWorker(
		workerCfg,
		db,
		publisher.NewWikiPublisher(publisherCfg, log),
		publisher.NewNotifier(publisherCfg, log),
		statuses,
		archive,
		storageCfg.RetentionPeriod,
		log,
	)
	if err != nil {
		log.Error("Failed to create publish worker", logger.Error(err))
		os.Exit(1)
	}

	if err := publishWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down worker...")
	publishWorker.Stop()
	log.Info("Worker stopped")
}
