package service

import (
	"context"
	"errors"
	"fmt"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/repository"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregatorService - единственное место, где пишутся rating и numReviews.
// Агрегат товара - кеш чистой функции от множества его отзывов
type RatingAggregatorService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewRatingAggregatorService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) *RatingAggregatorService {
	return &RatingAggregatorService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// Recompute читает распределение оценок и записывает оба поля товара.
// Пустой набор отзывов дает rating=0, numReviews=0
func (a *RatingAggregatorService) Recompute(ctx context.Context, productID primitive.ObjectID) (entity.RatingAggregate, error) {
	counts, err := a.reviewRepo.RatingDistribution(ctx, productID)
	if err != nil {
		return entity.RatingAggregate{}, fmt.Errorf("failed to read ratings: %w", err)
	}

	agg := entity.AggregateFromCounts(counts)

	if err := a.productRepo.UpdateAggregateFields(ctx, productID, agg); err != nil {
		return entity.RatingAggregate{}, fmt.Errorf("failed to write aggregate: %w", err)
	}

	return agg, nil
}

// ReconcileResult - итог полного прохода по каталогу
type ReconcileResult struct {
	Checked int
	Drifted int
	Failed  int
}

// ReconcileAll пересобирает агрегаты всех товаров и исправляет расхождения
func (a *RatingAggregatorService) ReconcileAll(ctx context.Context) (ReconcileResult, error) {
	var result ReconcileResult

	snapshots, err := a.productRepo.ListRatingSnapshots(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list products: %w", err)
	}

	for _, snap := range snapshots {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Checked++

		counts, err := a.reviewRepo.RatingDistribution(ctx, snap.ProductID)
		if err != nil {
			result.Failed++
			logger.Error().Err(err).Str("product_id", snap.ProductID.Hex()).Msg("Failed to read ratings during reconciliation")
			continue
		}

		expected := entity.AggregateFromCounts(counts)
		if expected.Rating == snap.Rating && expected.NumReviews == snap.NumReviews {
			continue
		}

		if err := a.productRepo.UpdateAggregateFields(ctx, snap.ProductID, expected); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				continue
			}
			result.Failed++
			logger.Error().Err(err).Str("product_id", snap.ProductID.Hex()).Msg("Failed to fix rating drift")
			continue
		}

		result.Drifted++
		metrics.RatingDriftCorrected.Inc()
		logger.Warn().
			Str("product_id", snap.ProductID.Hex()).
			Float64("stored_rating", snap.Rating).
			Int("stored_num_reviews", snap.NumReviews).
			Float64("rating", expected.Rating).
			Int("num_reviews", expected.NumReviews).
			Msg("Rating drift corrected")
	}

	return result, nil
}

// StatisticsReader - чистое чтение гистограммы, агрегат товара не трогает
type StatisticsReader struct {
	reviewRepo repository.ReviewRepository
}

func NewStatisticsReader(reviewRepo repository.ReviewRepository) *StatisticsReader {
	return &StatisticsReader{reviewRepo: reviewRepo}
}

// ComputeStats не проверяет существование товара, это делает вызывающий
func (r *StatisticsReader) ComputeStats(ctx context.Context, productID primitive.ObjectID) (entity.RatingStats, error) {
	counts, err := r.reviewRepo.RatingDistribution(ctx, productID)
	if err != nil {
		return entity.RatingStats{}, fmt.Errorf("failed to compute rating stats: %w", err)
	}
	return entity.StatsFromCounts(counts), nil
}
