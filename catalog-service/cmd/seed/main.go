package main

import (
	"context"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/config"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/catalog-service/internal/app/catalog/seed"
	"shopcatalog/pkg/logger"
)

const serviceName = "catalog-seed"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(serviceName, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

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
	seeder := seed.NewSeeder(
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		seed.DemoCatalog,
	)

	res, err := seeder.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("categories", res.Categories).Int("products", res.Products).Msg("Seed failed")
	}
	if res.Skipped {
		return
	}

	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Int("categories", res.Categories).
		Int("products", res.Products).
		Msg("Seed completed")
}
