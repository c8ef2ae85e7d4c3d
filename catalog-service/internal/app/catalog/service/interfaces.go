package service

import (
	"context"

	"shopcatalog/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingAggregator пересчитывает rating/numReviews товара по его отзывам
type RatingAggregator interface {
	Recompute(ctx context.Context, productID primitive.ObjectID) (entity.RatingAggregate, error)
}

// StatsReader строит гистограмму оценок. Товар не пишет
type StatsReader interface {
	ComputeStats(ctx context.Context, productID primitive.ObjectID) (entity.RatingStats, error)
}
