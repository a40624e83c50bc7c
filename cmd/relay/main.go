package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"example.com/fitness/internal/config"
	"example.com/fitness/internal/logging"
	"example.com/fitness/internal/outbox"
	httptransport "example.com/fitness/internal/transport/http"
)

func main() {
	if err := config.LoadDotEnv(".env", "config.env"); err != nil {
		fmt.Fprintf(os.Stderr, "load env file: %v\n", err)
	}
	cfg := config.Load()
	logger := logging.New("fitness-relay", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	go dispatcher.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.WithFields(logrus.Fields{
		"brokers":       cfg.KafkaBrokers,
		"poll_interval": cfg.OutboxPollInterval.String(),
		"batch_size":    cfg.OutboxBatchSize,
	}).Info("outbox relay starting")

	if err := httptransport.Run(ctx, httptransport.DefaultServerConfig(cfg.MetricsAddress), mux, logger); err != nil {
		logger.WithError(err).Error("metrics server error")
		stop()
	}

	dispatcher.Wait()
	logger.Info("outbox relay stopped")
}
