package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/pkg/logger"
	"shopcatalog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	collection := db.Collection(productsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("category_created_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "price", Value: 1}},
			Options: options.Index().SetName("price_idx"),
		},
		{
			Keys:    bson.D{{Key: "featured", Value: 1}, {Key: "rating", Value: -1}},
			Options: options.Index().SetName("featured_rating_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", productsCollection).Msg("Failed to create indexes")
	}

	return &productRepository{collection: collection}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Images == nil {
		product.Images = []string{}
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, productsCollection)
	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrDuplicateSlug
		}
		timer.Done(err)
		return fmt.Errorf("failed to create product: %w", err)
	}
	timer.Done(nil)

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)

	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrProductNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	timer.Done(nil)

	return &product, nil
}

// GetByIDs возвращает найденные товары в произвольном порядке
func (r *productRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *productRepository) Find(ctx context.Context, filter ProductFilter) ([]entity.Product, error) {
	opts := options.Find().SetSort(productSort(filter.Sort))
	if filter.Skip > 0 {
		opts.SetSkip(int64(filter.Skip))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	return r.find(ctx, buildProductFilter(filter), opts)
}

func (r *productRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]entity.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	timer.Done(nil)

	return products, nil
}

func (r *productRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)
	count, err := r.collection.CountDocuments(ctx, buildProductFilter(filter))
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// Update перезаписывает редактируемые поля. rating и num_reviews не трогает,
// их пишет только UpdateAggregateFields
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":           product.Name,
			"slug":           product.Slug,
			"description":    product.Description,
			"price":          product.Price,
			"original_price": product.OriginalPrice,
			"discount":       product.Discount,
			"category":       product.Category,
			"images":         product.Images,
			"main_image":     product.MainImage,
			"stock":          product.Stock,
			"featured":       product.Featured,
			"is_active":      product.IsActive,
			"updated_at":     product.UpdatedAt,
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, productsCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrDuplicateSlug
		}
		timer.Done(err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	timer.Done(nil)

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, productsCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// UpdateAggregateFields пишет оба производных поля одним $set
func (r *productRepository) UpdateAggregateFields(ctx context.Context, id primitive.ObjectID, agg entity.RatingAggregate) error {
	update := bson.M{
		"$set": bson.M{
			"rating":      agg.Rating,
			"num_reviews": agg.NumReviews,
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, productsCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) CountActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	return r.Count(ctx, ProductFilter{CategoryID: &categoryID, OnlyActive: true})
}

// ListRatingSnapshots читает только _id, rating и num_reviews всех товаров
func (r *productRepository) ListRatingSnapshots(ctx context.Context) ([]RatingSnapshot, error) {
	opts := options.Find().SetProjection(bson.M{"rating": 1, "num_reviews": 1})

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, productsCollection)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to list rating snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := make([]RatingSnapshot, 0)
	if err := cursor.All(ctx, &snapshots); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode rating snapshots: %w", err)
	}
	timer.Done(nil)

	return snapshots, nil
}

func buildProductFilter(f ProductFilter) bson.M {
	filter := bson.M{}

	if f.OnlyActive {
		filter["is_active"] = true
	}
	if f.CategoryID != nil {
		filter["category"] = *f.CategoryID
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if len(f.ExcludeIDs) > 0 {
		filter["_id"] = bson.M{"$nin": f.ExcludeIDs}
	}

	return filter
}

// productSort - _id в конце делает порядок страниц стабильным
func productSort(sort string) bson.D {
	var keys bson.D
	switch sort {
	case entity.SortPriceAsc:
		keys = bson.D{{Key: "price", Value: 1}}
	case entity.SortPriceDesc:
		keys = bson.D{{Key: "price", Value: -1}}
	case entity.SortRating:
		keys = bson.D{{Key: "rating", Value: -1}, {Key: "sold", Value: -1}}
	case entity.SortPopular:
		keys = bson.D{{Key: "sold", Value: -1}}
	default:
		keys = bson.D{{Key: "created_at", Value: -1}}
	}
	return append(keys, bson.E{Key: "_id", Value: -1})
}
