package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/synaptica-ai/warehouse/pkg/common/config"
	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"github.com/synaptica-ai/warehouse/pkg/common/kafka"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/gold"
)

func main() {
	logger.Init()
	cfg := config.Load()
	if cfg.EventsTopic == "" {
		logger.Log.Fatal("WAREHOUSE_EVENTS_TOPIC is required")
	}

	db, err := database.NewPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres(db)

	t := &trigger{verifier: gold.NewVerifier(db)}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.EventsTopic, cfg.KafkaGroupID+"-gold-trigger")
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.WithField("topic", cfg.EventsTopic).Info("Gold Trigger started")
	if err := consumer.Consume(ctx, t.handleEvent); err != nil && ctx.Err() == nil {
		logger.Log.WithError(err).Error("consumer error")
	}
	logger.Log.Info("Gold Trigger stopped")
}
