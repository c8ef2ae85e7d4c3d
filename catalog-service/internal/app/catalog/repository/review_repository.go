package repository

import (
	"context"
	"errors"
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

const reviewsCollection = "reviews"

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов и индексы:
// уникальный (product, user) и (product, created_at) для страниц отзывов
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection(reviewsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetName("product_user_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "product", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("product_created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать, работу не прерываем
		logger.Warn().Err(err).Str("collection", reviewsCollection).Msg("Failed to create indexes")
	}

	return &reviewRepository{collection: collection}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	if review.Images == nil {
		review.Images = []string{}
	}
	if review.Likes == nil {
		review.Likes = []string{}
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsCollection)
	result, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrDuplicateReview
		}
		timer.Done(err)
		return fmt.Errorf("failed to create review: %w", err)
	}
	timer.Done(nil)

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *reviewRepository) FindOne(ctx context.Context, productID primitive.ObjectID, userID string) (*entity.Review, error) {
	return r.findOne(ctx, bson.M{"product": productID, "user": userID})
}

func (r *reviewRepository) findOne(ctx context.Context, filter bson.M) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)

	var review entity.Review
	err := r.collection.FindOne(ctx, filter).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrReviewNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	timer.Done(nil)

	return &review, nil
}

// FindByProduct использует индекс product_created_at_idx
func (r *reviewRepository) FindByProduct(ctx context.Context, productID primitive.ObjectID, skip, limit int) ([]entity.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	cursor, err := r.collection.Find(ctx, bson.M{"product": productID}, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	timer.Done(nil)

	return reviews, nil
}

func (r *reviewRepository) CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	count, err := r.collection.CountDocuments(ctx, bson.M{"product": productID})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

// Update меняет только содержимое отзыва, likes не трогает
func (r *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	review.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"images":     review.Images,
			"updated_at": review.UpdatedAt,
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, reviewsCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": review.ID}, update)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, reviewsCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

func (r *reviewRepository) DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, reviewsCollection)
	result, err := r.collection.DeleteMany(ctx, bson.M{"product": productID})
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to delete product reviews: %w", err)
	}
	return result.DeletedCount, nil
}

// RatingDistribution считает отзывы товара по оценкам одним $group
func (r *reviewRepository) RatingDistribution(ctx context.Context, productID primitive.ObjectID) (entity.RatingCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "product", Value: productID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$rating"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpAggregate, reviewsCollection)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Rating int `bson:"_id"`
		Count  int `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode rating buckets: %w", err)
	}
	timer.Done(nil)

	counts := entity.NewRatingCounts()
	for _, b := range buckets {
		counts.Add(b.Rating, b.Count)
	}

	return counts, nil
}

// AddLike добавляет userID в likes ($addToSet не создает дублей)
func (r *reviewRepository) AddLike(ctx context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error) {
	return r.updateLikes(ctx, reviewID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *reviewRepository) RemoveLike(ctx context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error) {
	return r.updateLikes(ctx, reviewID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *reviewRepository) updateLikes(ctx context.Context, reviewID primitive.ObjectID, update bson.M) (*entity.Review, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, reviewsCollection)

	var review entity.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": reviewID}, update, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrReviewNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to update review likes: %w", err)
	}
	timer.Done(nil)

	return &review, nil
}
