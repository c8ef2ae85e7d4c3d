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

const categoriesCollection = "categories"

type categoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	collection := db.Collection(categoriesCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetName("slug_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("active_name_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn().Err(err).Str("collection", categoriesCollection).Msg("Failed to create indexes")
	}

	return &categoryRepository{collection: collection}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	category.CreatedAt = time.Now().UTC()

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, categoriesCollection)
	result, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrDuplicateSlug
		}
		timer.Done(err)
		return fmt.Errorf("failed to create category: %w", err)
	}
	timer.Done(nil)

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		category.ID = oid
	}

	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *categoryRepository) findOne(ctx context.Context, filter bson.M) (*entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, categoriesCollection)

	var category entity.Category
	err := r.collection.FindOne(ctx, filter).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			timer.Done(nil)
			return nil, ErrCategoryNotFound
		}
		timer.Done(err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	timer.Done(nil)

	return &category, nil
}

func (r *categoryRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Category, error) {
	if len(ids) == 0 {
		return []entity.Category{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// ListActive - активные категории по имени
func (r *categoryRepository) ListActive(ctx context.Context) ([]entity.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{"is_active": true}, opts)
}

func (r *categoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, categoriesCollection)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := make([]entity.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		timer.Done(err)
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	timer.Done(nil)

	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	update := bson.M{
		"$set": bson.M{
			"name":        category.Name,
			"slug":        category.Slug,
			"description": category.Description,
			"image":       category.Image,
			"is_active":   category.IsActive,
		},
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, categoriesCollection)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			timer.Done(nil)
			return ErrDuplicateSlug
		}
		timer.Done(err)
		return fmt.Errorf("failed to update category: %w", err)
	}
	timer.Done(nil)

	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, categoriesCollection)
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
