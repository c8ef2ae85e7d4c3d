package repository

import (
	"context"
	"errors"
	"time"

	"shopcatalog/catalog-service/internal/app/catalog/entity"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const serviceName = "catalog-service"

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound    = errors.New("review not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrWishlistNotFound  = errors.New("wishlist not found")
	ErrViewedNotFound    = errors.New("viewed product not found")
	ErrDuplicateReview   = errors.New("review for this product already exists")
	ErrDuplicateSlug     = errors.New("slug already exists")
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
)

// ReviewRepository - отзывы в MongoDB, уникальность (product, user) держит индекс
type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Review, error)
	FindOne(ctx context.Context, productID primitive.ObjectID, userID string) (*entity.Review, error)
	// FindByProduct - отзывы товара от новых к старым, limit <= 0 возвращает все
	FindByProduct(ctx context.Context, productID primitive.ObjectID, skip, limit int) ([]entity.Review, error)
	CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
	RatingDistribution(ctx context.Context, productID primitive.ObjectID) (entity.RatingCounts, error)
	AddLike(ctx context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error)
	RemoveLike(ctx context.Context, reviewID primitive.ObjectID, userID string) (*entity.Review, error)
}

// ProductFilter - условия выборки товаров
type ProductFilter struct {
	CategoryID *primitive.ObjectID
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	Featured   *bool
	OnlyActive bool
	ExcludeIDs []primitive.ObjectID
	Sort       string
	Skip       int
	Limit      int
}

// RatingSnapshot - сохраненные агрегатные поля товара
type RatingSnapshot struct {
	ProductID  primitive.ObjectID `bson:"_id"`
	Rating     float64            `bson:"rating"`
	NumReviews int                `bson:"num_reviews"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	UpdateAggregateFields(ctx context.Context, id primitive.ObjectID, agg entity.RatingAggregate) error
	CountActiveByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
	ListRatingSnapshots(ctx context.Context) ([]RatingSnapshot, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]entity.Category, error)
	ListActive(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type WishlistRepository interface {
	GetByUser(ctx context.Context, userID string) (*entity.Wishlist, error)
	GetOrCreate(ctx context.Context, userID string) (*entity.Wishlist, error)
	AddProduct(ctx context.Context, userID string, productID primitive.ObjectID) error
	RemoveProduct(ctx context.Context, userID string, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID string) error
	Contains(ctx context.Context, userID string, productID primitive.ObjectID) (bool, error)
}

type ViewedProductRepository interface {
	RecordView(ctx context.Context, userID string, productID primitive.ObjectID, at time.Time) error
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.ViewedProduct, error)
	Delete(ctx context.Context, userID string, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID string) (int64, error)
}

// Transactor выполняет fn в одной транзакции MongoDB.
// Репозитории, вызванные с переданным ctx, участвуют в транзакции
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
