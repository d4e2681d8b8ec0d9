package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/warehouse/pkg/common/config"
	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"github.com/synaptica-ai/warehouse/pkg/common/kafka"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/gold"
	"github.com/synaptica-ai/warehouse/pkg/observability/metrics"
	"github.com/synaptica-ai/warehouse/pkg/ops"
	"github.com/synaptica-ai/warehouse/pkg/pipeline"
	"github.com/synaptica-ai/warehouse/pkg/storage"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
)

func main() {
	logger.Init()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("invalid configuration")
	}

	catalog, err := terminology.Load(cfg.TerminologyPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load terminology catalog")
	}

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pipeline.Migrate(ctx, db); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate warehouse tables")
	}

	runLog := storage.NewRunLog(db)
	registry := metrics.NewRegistry()
	opts := pipeline.Options{
		BatchSize:  cfg.BatchSize,
		DataDir:    cfg.CSVDataPath,
		SkipErrors: cfg.SkipErrors,
		Catalog:    catalog,
		RunLog:     runLog,
		Metrics:    registry,
	}

	var lastRuns ops.LastRuns
	if cfg.RunLockEnabled {
		redisClient, err := database.NewRedis(ctx, cfg)
		if err != nil {
			logger.Log.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()

		cache := storage.NewLastRunCache(redisClient)
		opts.Lock = storage.NewRunLock(redisClient, cfg.RunLockTTL)
		opts.Cache = cache
		lastRuns = cache
	}

	if cfg.EventsTopic != "" {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		defer producer.Close()
		opts.Publisher = producer
	}

	handler := ops.NewHTTPHandler(
		pipeline.NewRunner(db, opts),
		runLog,
		gold.NewVerifier(db),
		lastRuns,
		registry.Handler(),
	)

	router := mux.NewRouter()
	router.Use(ops.Recovery, ops.Logging)
	handler.Register(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Warehouse Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Warehouse Service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Warehouse Service stopped")
}
