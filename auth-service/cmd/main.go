package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopcatalog/auth-service/internal/app/auth/config"
	"shopcatalog/auth-service/internal/app/auth/handler"
	"shopcatalog/auth-service/internal/app/auth/repository"
	"shopcatalog/auth-service/internal/app/auth/service"
	"shopcatalog/auth-service/internal/app/auth/util"
	"shopcatalog/pkg/logger"

	"github.com/gin-gonic/gin"
)

const serviceName = "auth-service"

func main() {
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

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// PostgreSQL: пул pgx, поверх него gorm
	db, pool, err := repository.ConnectPostgres(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	redisClient, err := repository.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	jwtManager := util.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)

	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewResetTokenRepository(redisClient),
		jwtManager,
		service.NewLogMailer(),
		service.AuthServiceOptions{
			ResetTokenTTL: cfg.Reset.TokenTTL,
			FrontendURL:   cfg.Reset.FrontendURL,
		},
	)

	router := handler.SetupRoutes(
		handler.NewAuthHandler(authService),
		handler.NewAuthMiddleware(jwtManager),
		cfg.Server.CORSOrigins,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped gracefully")
}
