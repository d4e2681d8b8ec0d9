package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/warehouse/pkg/common/config"
	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"github.com/synaptica-ai/warehouse/pkg/common/kafka"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/pipeline"
	"github.com/synaptica-ai/warehouse/pkg/storage"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
	"gorm.io/gorm"
)

// app holds the connections one command invocation needs.
type app struct {
	db       *gorm.DB
	redis    *redis.Client
	producer *kafka.Producer
	runLog   *storage.RunLog
	runner   *pipeline.Runner
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	catalog, err := terminology.Load(cfg.TerminologyPath)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	db, err := database.NewPostgres(cfg)
	if err != nil {
		return nil, withCode(exitSetup, err)
	}
	a := &app{db: db, runLog: storage.NewRunLog(db)}

	opts := pipeline.Options{
		BatchSize:  cfg.BatchSize,
		DataDir:    cfg.CSVDataPath,
		SkipErrors: cfg.SkipErrors,
		Catalog:    catalog,
		RunLog:     a.runLog,
	}

	if cfg.RunLockEnabled {
		if a.redis, err = database.NewRedis(ctx, cfg); err != nil {
			a.close()
			return nil, withCode(exitSetup, fmt.Errorf("run lock: %w", err))
		}
		opts.Lock = storage.NewRunLock(a.redis, cfg.RunLockTTL)
		opts.Cache = storage.NewLastRunCache(a.redis)
	}

	if cfg.EventsTopic != "" {
		a.producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.EventsTopic)
		opts.Publisher = a.producer
	}

	a.runner = pipeline.NewRunner(db, opts)
	return a, nil
}

// migrate prepares every table a run touches.
func (a *app) migrate(ctx context.Context) error {
	if err := pipeline.Migrate(ctx, a.db); err != nil {
		return withCode(exitSetup, err)
	}
	return nil
}

func (a *app) close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Log.WithError(err).Warn("failed to close producer")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := database.ClosePostgres(a.db); err != nil {
		logger.Log.WithError(err).Warn("failed to close postgres")
	}
}
