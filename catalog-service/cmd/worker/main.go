package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/config"
	"shopcatalog/catalog-service/internal/app/catalog/processor"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "rating-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(serviceName, cfg.LogLevel)
	if cfg.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.LogstashAddr, serviceName, cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Msg("Logstash unavailable, logging to stdout only")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === MONGODB ===
	mongoClient, err := repository.ConnectMongo(ctx, cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)
	aggregator := service.NewRatingAggregatorService(
		repository.NewReviewRepository(db),
		repository.NewProductRepository(db),
	)

	// === KAFKA CONSUMER ===
	consumer := processor.NewRatingEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.ReviewTopic,
		cfg.Kafka.WorkerGroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		aggregator,
	)
	consumer.Start(ctx)

	// === CRON ===
	scheduler := processor.NewCronScheduler(aggregator)
	if err := scheduler.Start(ctx, cfg.Worker.ReconcileSchedule); err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Worker.ReconcileSchedule).Msg("Failed to start cron scheduler")
	}

	// === HEALTH ===
	healthHandler := processor.NewHealthCheckHandler(map[string]processor.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return repository.PingMongo(ctx, mongoClient) },
	}, consumer)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:              ":" + cfg.Worker.HealthPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Starting health server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Health server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.ReviewTopic).
		Str("schedule", cfg.Worker.ReconcileSchedule).
		Msg("Rating worker is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down rating worker...")

	scheduler.Stop()
	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Health server forced to shutdown")
	}

	logger.Info().Msg("Rating worker stopped gracefully")
}
