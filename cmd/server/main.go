package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aquaman122/auto-report/api/handlers"
	"github.com/aquaman122/auto-report/api/routes"
	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/internal/agent/narrative"
	"github.com/aquaman122/auto-report/internal/agent/structurer"
	"github.com/aquaman122/auto-report/internal/agent/transcriber"
	"github.com/aquaman122/auto-report/internal/publisher"
	"github.com/aquaman122/auto-report/internal/renderer"
	"github.com/aquaman122/auto-report/internal/service/pipeline"
	"github.com/aquaman122/auto-report/internal/store"
	"github.com/aquaman122/auto-report/internal/utils/validator"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/queue"
	"github.com/aquaman122/auto-report/pkg/storage"
)

const version = "1.0.0"

func main() {
	serverCfg := config.GetServerConfig()
	openaiCfg := config.GetOpenAIConfig()
	dbCfg := config.GetDatabaseConfig()
	queueCfg := config.GetQueueConfig()
	storageCfg := config.GetStorageConfig()
	publisherCfg := config.GetPublisherConfig()

	log, err := logger.NewLogger(
		logger.WithLevel(serverCfg.LogLevel),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := store.New(ctx, dbCfg, log)
	if err != nil {
		log.Fatal("Failed to open store", logger.Error(err))
	}
	defer db.Close()

	whisper := transcriber.NewWhisperClient(openaiCfg, log)
	extractor := structurer.NewExtractor(openaiCfg, log)
	generator := narrative.NewGenerator()
	render := renderer.NewRenderer(serverCfg.SummaryDir, log)

	var opts []pipeline.Option

	var q queue.Queue
	if queueCfg.Enabled() {
		aq, err := queue.NewAsynqQueue(queueCfg)
		if err != nil {
			log.Fatal("Failed to connect publication queue", logger.Error(err))
		}
		defer aq.Close()
		q = aq
		opts = append(opts, pipeline.WithQueue(q))
	} else {
		log.Info("Publication queue disabled, no redis address configured")
	}

	archive, err := storage.New(storageCfg, log)
	if err != nil {
		log.Fatal("Failed to open artifact archive", logger.Error(err))
	}
	if archive != nil {
		opts = append(opts, pipeline.WithArchive(archive))
	}

	svc := pipeline.NewService(
		whisper, extractor, generator, render, db, log,
		openaiCfg.Language, openaiCfg.ChatModel,
		opts...,
	)

	wiki := publisher.NewWikiPublisher(publisherCfg, log)

	h := handlers.NewHandlers(handlers.Deps{
		Pipeline:     svc,
		Store:        db,
		Validator:    validator.NewAudioValidator(serverCfg),
		Narrative:    generator,
		Renderer:     render,
		Queue:        q,
		Wiki:         wiki,
		Archive:      archive,
		UploadDir:    serverCfg.UploadDir,
		SummaryDir:   serverCfg.SummaryDir,
		OpenAIKeySet: openaiCfg.APIKey != "",
		Production:   serverCfg.IsProduction(),
		Version:      version,
		Logger:       log,
	})

	if serverCfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = serverCfg.UploadMaxSize
	routes.SetupRoutes(r, h, serverCfg.UploadDir, serverCfg.SummaryDir)

	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("port", serverCfg.Port), logger.String("env", serverCfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
