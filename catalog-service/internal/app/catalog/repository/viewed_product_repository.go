package repository

import (
	"context"
	"fmt"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const viewedProductsCollection = "viewed_products"

type viewedProductRepository struct {
	collection *mongo.Collection
}

func NewViewedProductRepository(db *mongo.Database) ViewedProductRepository {
	collection := db.Collection(viewedProductsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "product", Value: 1}},
			Options: options.Index().SetName("user_product_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "viewed_at", Value: -1}},
			Options: options.Index().SetName("user_viewed_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", viewedProductsCollection).Msg("Failed to create indexes")
	}

	return &viewedProductRepository{collection: collection}
}

// RecordView - атомарный upsert: первый просмотр создает запись с view_count=1,
// повторный увеличивает счетчик. Два параллельных первых просмотра могут
// оба попытаться вставить документ, проигравший получает duplicate key
// и повторяет запрос, который теперь попадает в ветку $inc
func (r *viewedProductRepository) RecordView(ctx context.Context, userID string, productID primitive.ObjectID, at time.Time) error {
	filter := bson.M{"user": userID, "product": productID}
	update := bson.M{
		"$set": bson.M{"viewed_at": at},
		"$inc": bson.M{"view_count": 1},
	}
	opts := options.Update().SetUpsert(true)

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, viewedProductsCollection)
		_, err = r.collection.UpdateOne(ctx, filter, update, opts)
		if err == nil {
			timer.Done(nil)
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			timer.Done(err)
			return fmt.Errorf("failed to record view: %w", err)
		}
		timer.Done(nil)
	}

	return fmt.Errorf("failed to record view: %w", err)
}

func (r *viewedProductRepository) ListByUser(ctx context.Context, userID string, limit int) ([]entity.ViewedProduct, error) {
	opts := options.Find().SetSort(bson.D{{Key: "viewed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, viewedProductsCollection)
	cursor, err := r.collection.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find viewed products: %w", err)
	}
	defer cursor.Close(ctx)

	viewed := make([]entity.ViewedProduct, 0)
	if err := cursor.All(ctx, &viewed); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode viewed products: %w", err)
	}
	timer.Done(nil)

	return viewed, nil
}

func (r *viewedProductRepository) Delete(ctx context.Context, userID string, productID primitive.ObjectID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, viewedProductsCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"user": userID, "product": productID})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete viewed product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrViewedNotFound
	}

	return nil
}

func (r *viewedProductRepository) Clear(ctx context.Context, userID string) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, viewedProductsCollection)
	result, err := r.collection.DeleteMany(ctx, bson.M{"user": userID})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to clear viewed products: %w", err)
	}
	return result.DeletedCount, nil
}
