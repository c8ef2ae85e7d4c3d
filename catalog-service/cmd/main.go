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
	"shopcatalog/catalog-service/internal/app/catalog/handler"
	"shopcatalog/catalog-service/internal/app/catalog/infrastructure/cache"
	"shopcatalog/catalog-service/internal/app/catalog/infrastructure/messaging"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/logger"

	"github.com/gin-gonic/gin"
)

const serviceName = "catalog-service"

func main() {
	// === КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ ===
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(serviceName, cfg.LogLevel)
	if cfg.LogstashAddr != "" {
		if err := logger.InitLogstash(cfg.LogstashAddr, serviceName, cfg.LogLevel); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.LogstashAddr).Msg("Logstash unavailable, logging to stdout only")
		}
	}

	// в development клиенту отдаются тексты внутренних ошибок
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

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
	logger.Info().Str("database", cfg.MongoDB.Database).Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	viewedRepo := repository.NewViewedProductRepository(db)
	transactor := repository.NewMongoTransactor(mongoClient)

	// === REDIS (кеш категорий) ===
	redisClient, err := cache.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	categoryCache := cache.NewRedisCategoryCache(redisClient)
	defer categoryCache.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	// === KAFKA ===
	reviewEvents := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewTopic, serviceName)
	defer reviewEvents.Close()
	productEvents := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ProductTopic, serviceName)
	defer productEvents.Close()

	// === СЕРВИСЫ ===
	aggregator := service.NewRatingAggregatorService(reviewRepo, productRepo)
	statsReader := service.NewStatisticsReader(reviewRepo)

	reviewService := service.NewReviewService(
		reviewRepo,
		productRepo,
		aggregator,
		statsReader,
		transactor,
		reviewEvents,
		service.ReviewServiceOptions{
			Consistency:      cfg.Rating.Consistency,
			RecomputeRetries: cfg.Rating.RecomputeRetries,
			RetryBackoff:     cfg.Rating.RetryBackoff,
			RecomputeTimeout: cfg.Rating.RecomputeTimeout,
		},
	)
	catalogService := service.NewCatalogService(
		categoryRepo,
		productRepo,
		reviewRepo,
		statsReader,
		categoryCache,
		productEvents,
		cfg.Redis.CategoryTTL,
	)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo, categoryRepo)
	viewedService := service.NewViewedProductService(viewedRepo, productRepo, categoryRepo)

	logger.Info().Str("consistency", cfg.Rating.Consistency).Msg("Services initialized")

	// === HTTP ===
	router := handler.SetupRoutes(handler.Handlers{
		Reviews: handler.NewReviewHandler(reviewService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Shopper: handler.NewShopperHandler(wishlistService, viewedService),
	}, handler.NewAuthMiddleware(cfg.JWT.Secret), cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}
