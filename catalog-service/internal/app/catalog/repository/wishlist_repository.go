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

const wishlistsCollection = "wishlists"

type wishlistRepository struct {
	collection *mongo.Collection
}

// NewWishlistRepository - уникальный индекс по user гарантирует один список на пользователя
func NewWishlistRepository(db *mongo.Database) WishlistRepository {
	collection := db.Collection(wishlistsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetName("user_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "products.product", Value: 1}},
			Options: options.Index().SetName("products_product_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", wishlistsCollection).Msg("Failed to create indexes")
	}

	return &wishlistRepository{collection: collection}
}

func (r *wishlistRepository) GetByUser(ctx context.Context, userID string) (*entity.Wishlist, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, wishlistsCollection)

	var wishlist entity.Wishlist
	err := r.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&wishlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrWishlistNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	timer.Done(nil)

	return &wishlist, nil
}

// GetOrCreate создает пустой список upsert-ом, если его еще нет
func (r *wishlistRepository) GetOrCreate(ctx context.Context, userID string) (*entity.Wishlist, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"user":       userID,
			"products":   bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, wishlistsCollection)

	var wishlist entity.Wishlist
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user": userID}, update, opts).Decode(&wishlist)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// параллельный upsert уже создал документ
		timer.Done(nil)
		return r.GetByUser(ctx, userID)
	}
	timer.Done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create wishlist: %w", err)
	}

	return &wishlist, nil
}

// AddProduct добавляет товар в начало списка одним upsert.
// Если товар уже есть, фильтр не совпадает и upsert упирается в user_unique
func (r *wishlistRepository) AddProduct(ctx context.Context, userID string, productID primitive.ObjectID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"user":             userID,
		"products.product": bson.M{"$ne": productID},
	}
	update := bson.M{
		"$push": bson.M{
			"products": bson.M{
				"$each":     bson.A{entity.WishlistItem{Product: productID, AddedAt: now}},
				"$position": 0,
			},
		},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, wishlistsCollection)
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrAlreadyInWishlist
		}
		timer.Done(err)
		return fmt.Errorf("failed to add product to wishlist: %w", err)
	}
	timer.Done(nil)

	return nil
}

func (r *wishlistRepository) RemoveProduct(ctx context.Context, userID string, productID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"products": bson.M{"product": productID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return r.updateExisting(ctx, userID, update)
}

func (r *wishlistRepository) Clear(ctx context.Context, userID string) error {
	update := bson.M{
		"$set": bson.M{"products": bson.A{}, "updated_at": time.Now().UTC()},
	}
	return r.updateExisting(ctx, userID, update)
}

func (r *wishlistRepository) updateExisting(ctx context.Context, userID string, update bson.M) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, wishlistsCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"user": userID}, update)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to update wishlist: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrWishlistNotFound
	}

	return nil
}

func (r *wishlistRepository) Contains(ctx context.Context, userID string, productID primitive.ObjectID) (bool, error) {
	filter := bson.M{"user": userID, "products.product": productID}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, wishlistsCollection)
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	timer.Done(err)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}

	return count > 0, nil
}
