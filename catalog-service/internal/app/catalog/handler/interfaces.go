package handler

import (
	"context"

	"shopcatalog/catalog-service/internal/app/catalog/entity"
	"shopcatalog/catalog-service/internal/app/catalog/service"
	"shopcatalog/pkg/pagination"
)

type ReviewServiceInterface interface {
	GetProductReviews(ctx context.Context, productID string, page pagination.Params) (*entity.ProductReviews, error)
	CreateReview(ctx context.Context, productID string, author service.Author, req *entity.CreateReviewRequest) (*entity.Review, error)
	UpdateReview(ctx context.Context, reviewID, userID string, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error
	ToggleLike(ctx context.Context, reviewID, userID string) (*entity.LikeResult, error)
}

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, q entity.ProductQuery) (*entity.ProductList, error)
	GetFeaturedProducts(ctx context.Context) ([]entity.ProductView, error)
	GetProductsByCategory(ctx context.Context, slug string, page pagination.Params) (*entity.ProductList, error)
	GetProduct(ctx context.Context, id string) (*entity.ProductDetail, error)
	GetProductStats(ctx context.Context, id string) (*entity.ProductStats, error)
	GetSimilarProducts(ctx context.Context, id string, limit int) ([]entity.ProductView, error)
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductView, error)
	UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.ProductView, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]entity.CategoryWithCount, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*entity.CategoryWithCount, error)
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	UpdateCategory(ctx context.Context, id string, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type WishlistServiceInterface interface {
	GetWishlist(ctx context.Context, userID string) (*entity.WishlistView, error)
	AddToWishlist(ctx context.Context, userID, productID string) (*entity.WishlistView, error)
	RemoveFromWishlist(ctx context.Context, userID, productID string) (*entity.WishlistView, error)
	ClearWishlist(ctx context.Context, userID string) error
	IsInWishlist(ctx context.Context, userID, productID string) (bool, error)
}

type ViewedProductServiceInterface interface {
	RecordView(ctx context.Context, userID, productID string) error
	ListViewed(ctx context.Context, userID string, limit int) ([]entity.ViewedEntry, error)
	RemoveViewed(ctx context.Context, userID, productID string) error
	ClearViewed(ctx context.Context, userID string) (int64, error)
}
